package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/ruwad-api/internal/models"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

func TestAccessPolicyTable(t *testing.T) {
	policy := NewAccessPolicy()

	cases := []struct {
		role    models.UserRole
		op      Operation
		allowed bool
	}{
		{models.RoleTeacher, OpStudentCreate, true},
		{models.RoleTeacher, OpStudentUndo, true},
		{models.RoleStudent, OpStudentDelete, false},
		{models.RoleStudent, OpStudentRead, true},
		{models.RoleStudent, OpBehaviorRecord, true},
		{models.RoleTeacher, OpBehaviorClear, false},
		{models.RoleTeacher, OpTeacherClearFake, false},
		{models.RoleTeacher, OpStatisticsReset, false},
		{models.RoleAdmin, OpBehaviorClear, true},
		{models.RolePrincipal, OpStatisticsReset, true},
		{models.RoleAdmin, Operation("unknown"), false},
		{models.UserRole("janitor"), OpStudentRead, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.role)+"/"+string(tc.op), func(t *testing.T) {
			err := policy.Authorize(tc.role, tc.op)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, appErrors.ErrForbidden))
			assert.Equal(t, 403, appErrors.FromError(err).Status)
		})
	}
}

func TestNilAccessPolicyDenies(t *testing.T) {
	var policy *AccessPolicy
	assert.False(t, policy.Allows(models.RoleAdmin, OpStudentRead))
}
