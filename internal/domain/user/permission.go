package user

type Permission string

const (
	// Attendance
	PermissionAttendanceSelf    Permission = "attendance.self"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionSpoofFlagClear    Permission = "attendance.clear_spoof_flag"

	// Live tracking
	PermissionLiveLocationsView Permission = "tracking.view"

	// Leave
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// System configuration
	PermissionSystemConfigView   Permission = "system_config.view"
	PermissionSystemConfigManage Permission = "system_config.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceViewAll,
		PermissionSpoofFlagClear,
		PermissionLiveLocationsView,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionSystemConfigView,
		PermissionSystemConfigManage,
		PermissionReportsView,
	},
	RoleAdminStaff: {
		PermissionAttendanceViewAll,
		PermissionSpoofFlagClear,
		PermissionLiveLocationsView,
		PermissionLeaveViewAll,
		PermissionSystemConfigView,
		PermissionReportsView,
	},
	RoleCompany: {
		PermissionAttendanceViewAll,
		PermissionSpoofFlagClear,
		PermissionLiveLocationsView,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionSystemConfigView,
		PermissionSystemConfigManage,
		PermissionReportsView,
	},
	RoleStaff: {
		PermissionAttendanceSelf,
		PermissionLeaveCreate,
		PermissionSystemConfigView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
