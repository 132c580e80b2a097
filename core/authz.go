package core

// Action is a privileged operation guarded by an explicit role check.
type Action string

const (
	ActionManageUsers   Action = "users:manage"
	ActionMutateCourses Action = "courses:mutate"
)

var rolePermissions = map[string]map[Action]bool{
	RoleAdmin: {
		ActionManageUsers:   true,
		ActionMutateCourses: true,
	},
	RoleInstructor: {
		ActionMutateCourses: true,
	},
}

// Allowed reports whether the actor role may perform the action. Callers
// invoke it before executing privileged operations; there is no implicit
// annotation-style gating anywhere else.
func Allowed(role string, action Action) bool {
	return rolePermissions[role][action]
}
