package service

import (
	"context"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type classTeacherChecker interface {
	TeacherTeachesClass(ctx context.Context, teacherID, classID string) (bool, error)
}

// ClassAccess decides whether an actor may write grades for a class.
type ClassAccess struct {
	classes classTeacherChecker
}

// NewClassAccess constructs a ClassAccess.
func NewClassAccess(classes classTeacherChecker) *ClassAccess {
	return &ClassAccess{classes: classes}
}

// Ensure returns nil when actor may manage classID. Admins always may; teachers only for classes they teach or homeroom.
func (a *ClassAccess) Ensure(ctx context.Context, actor models.Actor, classID string) error {
	switch act := actor.(type) {
	case models.AdminActor:
		return nil
	case models.TeacherActor:
		ok, err := a.classes.TeacherTeachesClass(ctx, act.ID, classID)
		if err != nil {
			return appErrors.Internal(err, "failed to verify class access")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrForbidden, "teacher is not assigned to this class")
		}
		return nil
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions")
	}
}
