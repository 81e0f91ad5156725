package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tyemirov/teamnest/pkg/rolegate"
)

// NavItem is one entry in the role-shaped navigation menu. Hiding an entry is
// a usability affordance; the backend still authorizes every call.
type NavItem struct {
	Command     string
	Description string
	Guard       rolegate.Guard
}

// RoleGuard implements rolegate.Guarded.
func (item NavItem) RoleGuard() rolegate.Guard {
	return item.Guard
}

// navigationItems is the full menu; FilterByRole trims it per caller.
var navigationItems = []NavItem{
	{Command: "whoami", Description: "Show the signed-in account"},
	{Command: "children list", Description: "Your children", Guard: rolegate.Guard{Permission: rolegate.CapChildrenManage}},
	{Command: "classes list", Description: "Browse the class catalog", Guard: rolegate.Guard{Permission: rolegate.CapClassesView}},
	{Command: "enroll", Description: "Enroll a child into a class", Guard: rolegate.Guard{Permission: rolegate.CapEnrollmentsCreate}},
	{Command: "enrollments list", Description: "Your enrollments"},
	{Command: "orders list", Description: "Your orders", Guard: rolegate.Guard{Permission: rolegate.CapOrdersPay}},
	{Command: "pay", Description: "Pay an open order", Guard: rolegate.Guard{Permission: rolegate.CapOrdersPay}},
	{Command: "attendance list", Description: "Class attendance", Guard: rolegate.Guard{Permission: rolegate.CapAttendanceView}},
	{Command: "attendance record", Description: "Record attendance", Guard: rolegate.Guard{Permission: rolegate.CapAttendanceRecord}},
	{Command: "badges award", Description: "Award achievement badges", Guard: rolegate.Guard{Permission: rolegate.CapBadgesAward}},
	{Command: "events list", Description: "Upcoming events"},
	{Command: "events create", Description: "Create an event", Guard: rolegate.Guard{Permission: rolegate.CapEventsManage}},
	{Command: "announcements list", Description: "Recent announcements"},
	{Command: "announcements publish", Description: "Publish an announcement", Guard: rolegate.Guard{Permission: rolegate.CapAnnouncementsManage}},
	{Command: "photos upload", Description: "Upload class photos", Guard: rolegate.Guard{Permission: rolegate.CapPhotosUpload}},
	{Command: "admin users", Description: "Manage accounts", Guard: rolegate.Guard{Permission: rolegate.CapAdminUsers}},
	{Command: "admin report", Description: "Enrollment report", Guard: rolegate.Guard{Permission: rolegate.CapAdminReports}},
	{Command: "admin set-role", Description: "Assign account roles", Guard: rolegate.Guard{Permission: rolegate.CapAdminUsers, MinRole: rolegate.RoleOwner}},
}

func newMenuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the commands available to your role",
		RunE: func(command *cobra.Command, arguments []string) error {
			app, appErr := buildAppContext(command)
			if appErr != nil {
				return appErr
			}
			role, roleErr := currentRole(app)
			if roleErr != nil {
				return roleErr
			}
			visible := rolegate.FilterByRole(app.gate, role, navigationItems)
			fmt.Fprintf(command.OutOrStdout(), "Signed in as role %s. Available commands:\n", role)
			writer := tabwriter.NewWriter(command.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, item := range visible {
				fmt.Fprintf(writer, "  teamnest %s\t%s\n", item.Command, item.Description)
			}
			return writer.Flush()
		},
	}
}
