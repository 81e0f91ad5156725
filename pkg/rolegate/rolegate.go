package rolegate

import (
	"strings"

	"go.uber.org/zap"
)

// Role identifies one of the fixed platform roles.
type Role string

// Platform roles, ordered from least to most privileged.
const (
	RoleParent Role = "PARENT"
	RoleCoach  Role = "COACH"
	RoleAdmin  Role = "ADMIN"
	RoleOwner  Role = "OWNER"
)

// Capabilities granted to roles. Checked before exposing a command or menu
// entry; the backend remains the authoritative enforcement point.
const (
	CapChildrenManage      = "children.manage"
	CapClassesView         = "classes.view"
	CapClassesManage       = "classes.manage"
	CapEnrollmentsCreate   = "enrollments.create"
	CapOrdersPay           = "orders.pay"
	CapAttendanceView      = "attendance.view"
	CapAttendanceRecord    = "attendance.record"
	CapBadgesAward         = "badges.award"
	CapEventsManage        = "events.manage"
	CapAnnouncementsManage = "announcements.manage"
	CapPhotosUpload        = "photos.upload"
	CapAdminUsers          = "admin.users"
	CapAdminReports        = "admin.reports"
	CapBillingManage       = "billing.manage"
)

// roleOrdinals defines the total order used for minimum-role checks.
var roleOrdinals = map[Role]int{
	RoleParent: 0,
	RoleCoach:  1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// rolePermissions is the static role to capability table. Defined once at
// process start and never mutated.
var rolePermissions = map[Role]map[string]bool{
	RoleParent: buildCapabilitySet(
		CapChildrenManage,
		CapClassesView,
		CapEnrollmentsCreate,
		CapOrdersPay,
		CapAttendanceView,
	),
	RoleCoach: buildCapabilitySet(
		CapClassesView,
		CapAttendanceView,
		CapAttendanceRecord,
		CapBadgesAward,
		CapPhotosUpload,
	),
	RoleAdmin: buildCapabilitySet(
		CapChildrenManage,
		CapClassesView,
		CapClassesManage,
		CapEnrollmentsCreate,
		CapOrdersPay,
		CapAttendanceView,
		CapAttendanceRecord,
		CapBadgesAward,
		CapEventsManage,
		CapAnnouncementsManage,
		CapPhotosUpload,
		CapAdminUsers,
		CapAdminReports,
	),
	RoleOwner: buildCapabilitySet(
		CapChildrenManage,
		CapClassesView,
		CapClassesManage,
		CapEnrollmentsCreate,
		CapOrdersPay,
		CapAttendanceView,
		CapAttendanceRecord,
		CapBadgesAward,
		CapEventsManage,
		CapAnnouncementsManage,
		CapPhotosUpload,
		CapAdminUsers,
		CapAdminReports,
		CapBillingManage,
	),
}

func buildCapabilitySet(capabilities ...string) map[string]bool {
	set := make(map[string]bool, len(capabilities))
	for _, capability := range capabilities {
		set[capability] = true
	}
	return set
}

// Guard declares the access requirement attached to a menu entry or command.
// An empty Permission means the item is visible to every authenticated role.
type Guard struct {
	Permission string
	MinRole    Role
}

// Guarded is implemented by items that can be filtered through FilterByRole.
type Guarded interface {
	RoleGuard() Guard
}

// Gate answers capability and minimum-role questions from the static table.
// Unknown roles and capabilities never grant access.
type Gate struct {
	logger *zap.Logger
}

// NewGate constructs a Gate. A nil logger is replaced with a no-op logger.
func NewGate(logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{logger: logger}
}

// NormalizeRole maps a role string onto the canonical Role value. The second
// return value reports whether the role is known.
func NormalizeRole(role string) (Role, bool) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(role)))
	_, known := roleOrdinals[candidate]
	return candidate, known
}

// HasPermission reports whether the role grants the named capability.
func (gate *Gate) HasPermission(role string, capability string) bool {
	normalized, known := NormalizeRole(role)
	if !known {
		gate.logger.Warn("unknown role in permission check",
			zap.String("code", "rolegate.unknown_role"),
			zap.String("role", role),
			zap.String("capability", capability))
		return false
	}
	return rolePermissions[normalized][capability]
}

// HasAnyPermission reports whether the role grants at least one of the listed
// capabilities. An empty list grants nothing.
func (gate *Gate) HasAnyPermission(role string, capabilities []string) bool {
	for _, capability := range capabilities {
		if gate.HasPermission(role, capability) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role grants every listed capability.
// An empty list is vacuously true for any known role.
func (gate *Gate) HasAllPermissions(role string, capabilities []string) bool {
	if _, known := NormalizeRole(role); !known {
		gate.logger.Warn("unknown role in permission check",
			zap.String("code", "rolegate.unknown_role"),
			zap.String("role", role))
		return false
	}
	for _, capability := range capabilities {
		if !gate.HasPermission(role, capability) {
			return false
		}
	}
	return true
}

// IsRoleAtLeast reports whether role meets or exceeds minRole in the fixed
// hierarchy. Unknown roles on either side fail closed.
func (gate *Gate) IsRoleAtLeast(role string, minRole string) bool {
	normalized, known := NormalizeRole(role)
	if !known {
		return false
	}
	normalizedMin, knownMin := NormalizeRole(minRole)
	if !knownMin {
		return false
	}
	return roleOrdinals[normalized] >= roleOrdinals[normalizedMin]
}

// Allows evaluates a single Guard against the role.
func (gate *Gate) Allows(role string, guard Guard) bool {
	if guard.Permission == "" {
		return true
	}
	if !gate.HasPermission(role, guard.Permission) {
		return false
	}
	if guard.MinRole == "" {
		return true
	}
	return gate.IsRoleAtLeast(role, string(guard.MinRole))
}

// FilterByRole keeps the items whose guards the role satisfies, preserving
// order.
func FilterByRole[T Guarded](gate *Gate, role string, items []T) []T {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if gate.Allows(role, item.RoleGuard()) {
			visible = append(visible, item)
		}
	}
	return visible
}
