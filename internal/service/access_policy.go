package service

import (
	"github.com/noah-isme/ruwad-api/internal/models"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
)

// Operation names a protected action.
type Operation string

const (
	OpStudentRead        Operation = "student.read"
	OpStudentCreate      Operation = "student.create"
	OpStudentImport      Operation = "student.import"
	OpStudentUpdate      Operation = "student.update"
	OpStudentDelete      Operation = "student.delete"
	OpStudentRestore     Operation = "student.restore"
	OpStudentListDeleted Operation = "student.list_deleted"
	OpStudentUndo        Operation = "student.undo"
	OpBehaviorRead       Operation = "behavior.read"
	OpBehaviorRecord     Operation = "behavior.record"
	OpBehaviorClear      Operation = "behavior.clear"
	OpTeacherRead        Operation = "teacher.read"
	OpTeacherCreate      Operation = "teacher.create"
	OpTeacherClearFake   Operation = "teacher.clear_fake"
	OpStatisticsRead     Operation = "statistics.read"
	OpStatisticsReset    Operation = "statistics.reset"
	OpReportRead         Operation = "report.read"
)

var (
	allRoles     = []models.UserRole{models.RolePrincipal, models.RoleAdmin, models.RoleTeacher, models.RoleStudent}
	staffRoles   = []models.UserRole{models.RolePrincipal, models.RoleAdmin, models.RoleTeacher}
	managerRoles = []models.UserRole{models.RolePrincipal, models.RoleAdmin}
)

// AccessPolicy is the single table mapping operations to permitted roles.
// Unknown operations are denied.
type AccessPolicy struct {
	rules map[Operation]map[models.UserRole]struct{}
}

// NewAccessPolicy builds the default role table.
func NewAccessPolicy() *AccessPolicy {
	p := &AccessPolicy{rules: make(map[Operation]map[models.UserRole]struct{})}

	p.allow(allRoles, OpStudentRead, OpBehaviorRead, OpBehaviorRecord, OpTeacherRead, OpTeacherCreate, OpStatisticsRead, OpReportRead)
	p.allow(staffRoles, OpStudentCreate, OpStudentImport, OpStudentUpdate, OpStudentDelete, OpStudentRestore, OpStudentListDeleted, OpStudentUndo)
	p.allow(managerRoles, OpBehaviorClear, OpTeacherClearFake, OpStatisticsReset)

	return p
}

func (p *AccessPolicy) allow(roles []models.UserRole, ops ...Operation) {
	for _, op := range ops {
		set, ok := p.rules[op]
		if !ok {
			set = make(map[models.UserRole]struct{}, len(roles))
			p.rules[op] = set
		}
		for _, role := range roles {
			set[role] = struct{}{}
		}
	}
}

// Allows reports whether role may perform op.
func (p *AccessPolicy) Allows(role models.UserRole, op Operation) bool {
	if p == nil {
		return false
	}
	_, ok := p.rules[op][role]
	return ok
}

// Authorize returns a Forbidden error when role may not perform op.
func (p *AccessPolicy) Authorize(role models.UserRole, op Operation) error {
	if !p.Allows(role, op) {
		return appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions for "+string(op))
	}
	return nil
}
