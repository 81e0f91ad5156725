package rolegate

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestHasPermissionCaseInsensitiveRole(t *testing.T) {
	gate := NewGate(zaptest.NewLogger(t))
	if !gate.HasPermission("parent", CapChildrenManage) {
		t.Fatalf("expected lowercase parent role to grant children.manage")
	}
	if !gate.HasPermission(" Coach ", CapAttendanceRecord) {
		t.Fatalf("expected padded mixed-case coach role to grant attendance.record")
	}
}

func TestHasPermissionFailsClosed(t *testing.T) {
	gate := NewGate(zaptest.NewLogger(t))
	if gate.HasPermission("superuser", CapChildrenManage) {
		t.Fatalf("unknown role must never grant a capability")
	}
	if gate.HasPermission("ADMIN", "no.such.capability") {
		t.Fatalf("unknown capability must never be granted")
	}
	if gate.HasPermission("PARENT", CapAdminUsers) {
		t.Fatalf("parent must not hold admin.users")
	}
}

func TestHasAnyPermissionEmptyListIsFalse(t *testing.T) {
	gate := NewGate(zaptest.NewLogger(t))
	for _, role := range []string{"PARENT", "COACH", "ADMIN", "OWNER"} {
		if gate.HasAnyPermission(role, nil) {
			t.Fatalf("empty capability list must be false for role %s", role)
		}
	}
	if !gate.HasAnyPermission("COACH", []string{CapAdminUsers, CapBadgesAward}) {
		t.Fatalf("expected coach to match badges.award in any-check")
	}
}

func TestHasAllPermissionsEmptyListIsTrue(t *testing.T) {
	gate := NewGate(zaptest.NewLogger(t))
	for _, role := range []string{"PARENT", "COACH", "ADMIN", "OWNER"} {
		if !gate.HasAllPermissions(role, nil) {
			t.Fatalf("empty capability list must be vacuously true for role %s", role)
		}
	}
	if gate.HasAllPermissions("unknown", nil) {
		t.Fatalf("unknown role must fail even the vacuous all-check")
	}
	if gate.HasAllPermissions("COACH", []string{CapBadgesAward, CapAdminUsers}) {
		t.Fatalf("coach must not satisfy an all-check containing admin.users")
	}
}

func TestIsRoleAtLeast(t *testing.T) {
	gate := NewGate(zaptest.NewLogger(t))
	testCases := []struct {
		role     string
		minRole  string
		expected bool
	}{
		{"OWNER", "ADMIN", true},
		{"COACH", "ADMIN", false},
		{"unknown", "ADMIN", false},
		{"ADMIN", "unknown", false},
		{"admin", "ADMIN", true},
		{"PARENT", "PARENT", true},
	}
	for _, testCase := range testCases {
		if actual := gate.IsRoleAtLeast(testCase.role, testCase.minRole); actual != testCase.expected {
			t.Fatalf("IsRoleAtLeast(%q, %q) = %v, expected %v", testCase.role, testCase.minRole, actual, testCase.expected)
		}
	}
}

type guardedEntry struct {
	name  string
	guard Guard
}

func (entry guardedEntry) RoleGuard() Guard {
	return entry.guard
}

func TestFilterByRole(t *testing.T) {
	gate := NewGate(zaptest.NewLogger(t))
	entries := []guardedEntry{
		{name: "home"},
		{name: "children", guard: Guard{Permission: CapChildrenManage}},
		{name: "attendance", guard: Guard{Permission: CapAttendanceRecord}},
		{name: "users", guard: Guard{Permission: CapAdminUsers}},
		{name: "billing", guard: Guard{Permission: CapAdminUsers, MinRole: RoleOwner}},
	}

	parentVisible := FilterByRole(gate, "PARENT", entries)
	if len(parentVisible) != 2 || parentVisible[0].name != "home" || parentVisible[1].name != "children" {
		t.Fatalf("unexpected parent menu: %+v", parentVisible)
	}

	adminVisible := FilterByRole(gate, "ADMIN", entries)
	for _, entry := range adminVisible {
		if entry.name == "billing" {
			t.Fatalf("admin must not see an entry gated to OWNER even with the permission granted")
		}
	}
	if len(adminVisible) != 4 {
		t.Fatalf("expected admin to see 4 entries, got %d", len(adminVisible))
	}

	ownerVisible := FilterByRole(gate, "OWNER", entries)
	if len(ownerVisible) != len(entries) {
		t.Fatalf("expected owner to see every entry, got %d of %d", len(ownerVisible), len(entries))
	}

	unknownVisible := FilterByRole(gate, "mystery", entries)
	if len(unknownVisible) != 1 || unknownVisible[0].name != "home" {
		t.Fatalf("unknown role must only see unguarded entries, got %+v", unknownVisible)
	}
}
