package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tyemirov/teamnest/internal/apikit"
	"github.com/tyemirov/teamnest/pkg/rolegate"
)

func newChildrenCommand() *cobra.Command {
	childrenCmd := &cobra.Command{
		Use:   "children",
		Short: "Manage the children on your account",
	}

	childrenCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your children",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			children, listErr := app.client.Children.List(command.Context())
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tBIRTH DATE")
			for _, child := range children {
				fmt.Fprintf(writer, "%s\t%s %s\t%s\n", child.ID, child.FirstName, child.LastName, child.BirthDate)
			}
			return writer.Flush()
		},
	})

	var addInput apikit.ChildInput
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a child",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapChildrenManage); guardErr != nil {
				return guardErr
			}
			child, createErr := app.client.Children.Create(command.Context(), addInput)
			if createErr != nil {
				return createErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Added %s %s (%s)\n", child.FirstName, child.LastName, child.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&addInput.FirstName, "first-name", "", "First name")
	addCmd.Flags().StringVar(&addInput.LastName, "last-name", "", "Last name")
	addCmd.Flags().StringVar(&addInput.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addInput.MedicalNotes, "medical-notes", "", "Medical notes")
	_ = addCmd.MarkFlagRequired("first-name")
	_ = addCmd.MarkFlagRequired("last-name")
	_ = addCmd.MarkFlagRequired("birth-date")
	childrenCmd.AddCommand(addCmd)

	var updateInput apikit.ChildInput
	updateCmd := &cobra.Command{
		Use:   "update <child-id>",
		Short: "Update a child record",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapChildrenManage); guardErr != nil {
				return guardErr
			}
			child, updateErr := app.client.Children.Update(command.Context(), arguments[0], updateInput)
			if updateErr != nil {
				return updateErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Updated %s %s (%s)\n", child.FirstName, child.LastName, child.ID)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&updateInput.FirstName, "first-name", "", "First name")
	updateCmd.Flags().StringVar(&updateInput.LastName, "last-name", "", "Last name")
	updateCmd.Flags().StringVar(&updateInput.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updateInput.MedicalNotes, "medical-notes", "", "Medical notes")
	childrenCmd.AddCommand(updateCmd)

	childrenCmd.AddCommand(&cobra.Command{
		Use:   "remove <child-id>",
		Short: "Remove a child record",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapChildrenManage); guardErr != nil {
				return guardErr
			}
			if deleteErr := app.client.Children.Delete(command.Context(), arguments[0]); deleteErr != nil {
				return deleteErr
			}
			fmt.Fprintln(command.OutOrStdout(), "Removed.")
			return nil
		},
	})

	return childrenCmd
}

func newClassesCommand() *cobra.Command {
	classesCmd := &cobra.Command{
		Use:   "classes",
		Short: "Browse the class catalog",
	}

	var filter apikit.ClassFilter
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List classes",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			classes, listErr := app.client.Classes.List(command.Context(), filter)
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tNAME\tSPORT\tAGES\tPRICE\tSPOTS")
			for _, class := range classes {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%d-%d\t%s\t%d/%d\n",
					class.ID, class.Name, class.Sport, class.AgeMin, class.AgeMax,
					formatCents(class.PriceCents, ""), class.SpotsLeft, class.Capacity)
			}
			return writer.Flush()
		},
	}
	listCmd.Flags().StringVar(&filter.Sport, "sport", "", "Filter by sport")
	listCmd.Flags().IntVar(&filter.Age, "age", 0, "Filter by child age")
	classesCmd.AddCommand(listCmd)

	classesCmd.AddCommand(&cobra.Command{
		Use:   "show <class-id>",
		Short: "Show one class",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			class, getErr := app.client.Classes.Get(command.Context(), arguments[0])
			if getErr != nil {
				return getErr
			}
			out := command.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", class.Name, class.Sport)
			fmt.Fprintf(out, "Ages %d-%d, coach %s\n", class.AgeMin, class.AgeMax, class.CoachName)
			fmt.Fprintf(out, "Schedule: %s at %s\n", class.Schedule, class.Location)
			fmt.Fprintf(out, "Price: %s, spots left: %d of %d\n",
				formatCents(class.PriceCents, ""), class.SpotsLeft, class.Capacity)
			for _, sessionDate := range class.SessionDates {
				fmt.Fprintf(out, "  - %s\n", sessionDate)
			}
			return nil
		},
	})

	return classesCmd
}

func newEnrollCommand() *cobra.Command {
	var childID string
	var classID string

	enrollCmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a child into a class",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapEnrollmentsCreate); guardErr != nil {
				return guardErr
			}
			enrollment, createErr := app.client.Enrollments.Create(command.Context(), childID, classID)
			if createErr != nil {
				return createErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Enrolled %s into %s (status %s)\n",
				enrollment.ChildName, enrollment.ClassName, enrollment.Status)
			if enrollment.OrderID != "" {
				fmt.Fprintf(command.OutOrStdout(), "Order %s created. Run 'teamnest pay %s' to complete payment.\n",
					enrollment.OrderID, enrollment.OrderID)
			}
			return nil
		},
	}
	enrollCmd.Flags().StringVar(&childID, "child", "", "Child id")
	enrollCmd.Flags().StringVar(&classID, "class", "", "Class id")
	_ = enrollCmd.MarkFlagRequired("child")
	_ = enrollCmd.MarkFlagRequired("class")

	return enrollCmd
}

func newEnrollmentsCommand() *cobra.Command {
	enrollmentsCmd := &cobra.Command{
		Use:   "enrollments",
		Short: "View and manage enrollments",
	}

	enrollmentsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List enrollments",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			enrollments, listErr := app.client.Enrollments.List(command.Context())
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tCHILD\tCLASS\tSTATUS")
			for _, enrollment := range enrollments {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					enrollment.ID, enrollment.ChildName, enrollment.ClassName, enrollment.Status)
			}
			return writer.Flush()
		},
	})

	enrollmentsCmd.AddCommand(&cobra.Command{
		Use:   "cancel <enrollment-id>",
		Short: "Cancel an enrollment",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if cancelErr := app.client.Enrollments.Cancel(command.Context(), arguments[0]); cancelErr != nil {
				return cancelErr
			}
			fmt.Fprintln(command.OutOrStdout(), "Canceled.")
			return nil
		},
	})

	return enrollmentsCmd
}
