package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tyemirov/teamnest/internal/apikit"
	"github.com/tyemirov/teamnest/pkg/rolegate"
)

func newAttendanceCommand() *cobra.Command {
	attendanceCmd := &cobra.Command{
		Use:   "attendance",
		Short: "View and record class attendance",
	}

	var listClassID string
	var listSessionDate string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List attendance for a class session",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapAttendanceView); guardErr != nil {
				return guardErr
			}
			records, listErr := app.client.Attendance.ListForSession(command.Context(), listClassID, listSessionDate)
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "CHILD\tPRESENT\tNOTE")
			for _, record := range records {
				present := "no"
				if record.Present {
					present = "yes"
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\n", record.ChildName, present, record.Note)
			}
			return writer.Flush()
		},
	}
	listCmd.Flags().StringVar(&listClassID, "class", "", "Class id")
	listCmd.Flags().StringVar(&listSessionDate, "date", "", "Session date (YYYY-MM-DD)")
	_ = listCmd.MarkFlagRequired("class")
	_ = listCmd.MarkFlagRequired("date")
	attendanceCmd.AddCommand(listCmd)

	var recordInput apikit.AttendanceInput
	var absent bool
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record one attendance mark",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapAttendanceRecord); guardErr != nil {
				return guardErr
			}
			recordInput.Present = !absent
			record, recordErr := app.client.Attendance.Record(command.Context(), recordInput)
			if recordErr != nil {
				return recordErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Recorded %s as present=%t\n", record.ChildName, record.Present)
			return nil
		},
	}
	recordCmd.Flags().StringVar(&recordInput.ClassID, "class", "", "Class id")
	recordCmd.Flags().StringVar(&recordInput.SessionDate, "date", "", "Session date (YYYY-MM-DD)")
	recordCmd.Flags().StringVar(&recordInput.ChildID, "child", "", "Child id")
	recordCmd.Flags().StringVar(&recordInput.Note, "note", "", "Optional note")
	recordCmd.Flags().BoolVar(&absent, "absent", false, "Mark the child absent instead of present")
	_ = recordCmd.MarkFlagRequired("class")
	_ = recordCmd.MarkFlagRequired("date")
	_ = recordCmd.MarkFlagRequired("child")
	attendanceCmd.AddCommand(recordCmd)

	return attendanceCmd
}

func newBadgesCommand() *cobra.Command {
	badgesCmd := &cobra.Command{
		Use:   "badges",
		Short: "View and award achievement badges",
	}

	badgesCmd.AddCommand(&cobra.Command{
		Use:   "list <child-id>",
		Short: "List a child's badges",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			badges, listErr := app.client.Badges.ListForChild(command.Context(), arguments[0])
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tAWARDED\tDESCRIPTION")
			for _, badge := range badges {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", badge.Name, badge.AwardedAt, badge.Description)
			}
			return writer.Flush()
		},
	})

	var awardChildID string
	var awardBadgeID string
	var awardNote string
	awardCmd := &cobra.Command{
		Use:   "award",
		Short: "Award a badge to a child",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapBadgesAward); guardErr != nil {
				return guardErr
			}
			badge, awardErr := app.client.Badges.Award(command.Context(), awardChildID, awardBadgeID, awardNote)
			if awardErr != nil {
				return awardErr
			}
			fmt.Fprintf(command.OutOrStdout(), "Awarded %s\n", badge.Name)
			return nil
		},
	}
	awardCmd.Flags().StringVar(&awardChildID, "child", "", "Child id")
	awardCmd.Flags().StringVar(&awardBadgeID, "badge", "", "Badge id")
	awardCmd.Flags().StringVar(&awardNote, "note", "", "Optional note")
	_ = awardCmd.MarkFlagRequired("child")
	_ = awardCmd.MarkFlagRequired("badge")
	badgesCmd.AddCommand(awardCmd)

	return badgesCmd
}
