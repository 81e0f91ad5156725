package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tyemirov/teamnest/pkg/rolegate"
)

func newAdminCommand() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative tools",
	}

	adminCmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List platform accounts",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapAdminUsers); guardErr != nil {
				return guardErr
			}
			users, listErr := app.client.Admin.ListUsers(command.Context())
			if listErr != nil {
				return listErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "ID\tEMAIL\tROLE\tNAME")
			for _, user := range users {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s %s\n",
					user.ID, user.Email, user.Role, user.FirstName, user.LastName)
			}
			return writer.Flush()
		},
	})

	var roleValue string
	setRoleCmd := &cobra.Command{
		Use:   "set-role <user-id>",
		Short: "Assign a role to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapAdminUsers); guardErr != nil {
				return guardErr
			}
			if _, known := rolegate.NormalizeRole(roleValue); !known {
				return configError(cliCodeForbidden, fmt.Sprintf("unknown role %q", roleValue))
			}
			user, setErr := app.client.Admin.SetUserRole(command.Context(), arguments[0], roleValue)
			if setErr != nil {
				return setErr
			}
			fmt.Fprintf(command.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
	setRoleCmd.Flags().StringVar(&roleValue, "role", "", "Role to assign (PARENT, COACH, ADMIN, OWNER)")
	_ = setRoleCmd.MarkFlagRequired("role")
	adminCmd.AddCommand(setRoleCmd)

	adminCmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Show the per-class enrollment report",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			if guardErr := requireCapability(app, rolegate.CapAdminReports); guardErr != nil {
				return guardErr
			}
			rows, reportErr := app.client.Admin.EnrollmentReport(command.Context())
			if reportErr != nil {
				return reportErr
			}
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "CLASS\tENROLLED\tCAPACITY\tWAITLIST")
			for _, row := range rows {
				fmt.Fprintf(writer, "%s\t%d\t%d\t%d\n", row.ClassName, row.Enrolled, row.Capacity, row.Waitlist)
			}
			return writer.Flush()
		},
	})

	return adminCmd
}
