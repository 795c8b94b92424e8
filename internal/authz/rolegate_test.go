package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Every declared action must have an explicit outcome for every role.
func TestGateTableIsTotal(t *testing.T) {
	roles := []Role{RoleProfessor, RoleStudent}
	for _, action := range Actions() {
		outcomes := gateTable[action]
		for _, role := range roles {
			_, defined := outcomes[role]
			assert.True(t, defined, "action %s has no outcome for role %s", action, role)
		}
	}
}

func TestCheckUnknownActionFailsClosed(t *testing.T) {
	d := Check(RoleProfessor, Action("student:explode"))
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)
}

func TestCheckUnknownRoleFailsClosed(t *testing.T) {
	d := Check(Role("JANITOR"), ActionStudentRead)
	assert.False(t, d.Allowed)
}

func TestCheckProfessorPermissions(t *testing.T) {
	for _, action := range Actions() {
		assert.True(t, Check(RoleProfessor, action).Allowed, "professor denied %s", action)
	}
}

func TestCheckStudentPermissions(t *testing.T) {
	allowed := map[Action]bool{
		ActionStudentRead:     true,
		ActionClassRead:       true,
		ActionActivityRead:    true,
		ActionActivityDeliver: true,
	}
	for _, action := range Actions() {
		d := Check(RoleStudent, action)
		assert.Equal(t, allowed[action], d.Allowed, "unexpected outcome for student on %s", action)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleProfessor.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("ADMIN").Valid())
}
