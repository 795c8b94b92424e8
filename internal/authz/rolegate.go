// Package authz centralizes every role-based permission decision. The
// gate is a total table: each action lists the outcome for each role, and
// anything absent from the table is denied.
package authz

// Role is a caller's authorization class.
type Role string

const (
	RoleProfessor Role = "PROFESSOR"
	RoleStudent   Role = "STUDENT"
)

// Valid reports whether the role is one of the known classes.
func (r Role) Valid() bool {
	return r == RoleProfessor || r == RoleStudent
}

// Actor identifies the caller of a repository operation. Username scopes
// ownership checks for the student role.
type Actor struct {
	Username string
	Role     Role
}

// Action is a symbolic operation id checked against the gate table.
type Action string

const (
	ActionStudentCreate  Action = "student:create"
	ActionStudentRead    Action = "student:read"
	ActionStudentList    Action = "student:list"
	ActionStudentGrade   Action = "student:grade"
	ActionStudentArchive Action = "student:archive"

	ActionClassCreate Action = "class:create"
	ActionClassRead   Action = "class:read"
	ActionClassEnroll Action = "class:enroll"
	ActionClassList   Action = "class:list"

	ActionActivityCreate  Action = "activity:create"
	ActionActivityRead    Action = "activity:read"
	ActionActivityDeliver Action = "activity:deliver"
	ActionActivityGrade   Action = "activity:grade"

	ActionReportView   Action = "report:view"
	ActionReportExport Action = "report:export"

	ActionAuditRead Action = "audit:read"
)

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed bool
	Reason  string
}

// gateTable declares, per action, the roles permitted to perform it.
// Every action known to the system must appear here; Check treats a
// missing entry as a denial for all roles.
var gateTable = map[Action]map[Role]bool{
	ActionStudentCreate:  {RoleProfessor: true, RoleStudent: false},
	ActionStudentRead:    {RoleProfessor: true, RoleStudent: true},
	ActionStudentList:    {RoleProfessor: true, RoleStudent: false},
	ActionStudentGrade:   {RoleProfessor: true, RoleStudent: false},
	ActionStudentArchive: {RoleProfessor: true, RoleStudent: false},

	ActionClassCreate: {RoleProfessor: true, RoleStudent: false},
	ActionClassRead:   {RoleProfessor: true, RoleStudent: true},
	ActionClassEnroll: {RoleProfessor: true, RoleStudent: false},
	ActionClassList:   {RoleProfessor: true, RoleStudent: false},

	ActionActivityCreate:  {RoleProfessor: true, RoleStudent: false},
	ActionActivityRead:    {RoleProfessor: true, RoleStudent: true},
	ActionActivityDeliver: {RoleProfessor: true, RoleStudent: true},
	ActionActivityGrade:   {RoleProfessor: true, RoleStudent: false},

	ActionReportView:   {RoleProfessor: true, RoleStudent: false},
	ActionReportExport: {RoleProfessor: true, RoleStudent: false},

	ActionAuditRead: {RoleProfessor: true, RoleStudent: false},
}

// Check resolves (role, action) against the gate table. Unknown actions
// and unknown roles are denied, never allowed.
func Check(role Role, action Action) Decision {
	outcomes, known := gateTable[action]
	if !known {
		return Decision{Allowed: false, Reason: "unknown action"}
	}
	allowed, defined := outcomes[role]
	if !defined {
		return Decision{Allowed: false, Reason: "role not covered for action"}
	}
	if !allowed {
		return Decision{Allowed: false, Reason: "role not permitted"}
	}
	return Decision{Allowed: true}
}

// Actions returns every action declared in the gate table. Used by tests
// to assert the table is total.
func Actions() []Action {
	out := make([]Action, 0, len(gateTable))
	for a := range gateTable {
		out = append(out, a)
	}
	return out
}
