package constants

import "fmt"

// Role adalah level akses user. Nilai lebih kecil = hak lebih besar.
const (
	RoleAdmin   = 0
	RoleManager = 1
	RoleLeader  = 2
	RoleMember  = 3
)

var RoleNames = map[int]string{
	RoleAdmin:   "admin",
	RoleManager: "manager",
	RoleLeader:  "leader",
	RoleMember:  "member",
}

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess   = "只有管理员可以访问%s"
	ErrOnlyManagersCanAccess = "只有管理员或项目经理可以访问%s"
	ErrOnlyLeadersCanAccess  = "只有组长及以上角色可以访问%s"
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorManager(feature string) string {
	return fmt.Sprintf(ErrOnlyManagersCanAccess, feature)
}

func RoleErrorLeader(feature string) string {
	return fmt.Sprintf(ErrOnlyLeadersCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []int{
		RoleAdmin,
		RoleManager,
		RoleLeader,
		RoleMember,
	}

	ManagerAndAbove = []int{
		RoleAdmin,
		RoleManager,
	}

	LeaderAndAbove = []int{
		RoleAdmin,
		RoleManager,
		RoleLeader,
	}

	AdminOnly = []int{
		RoleAdmin,
	}
)

func IsValidRole(role int) bool {
	_, ok := RoleNames[role]
	return ok
}
