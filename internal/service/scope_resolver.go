package service

import (
	"context"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type teacherClassLister interface {
	TeacherClassIDs(ctx context.Context, teacherID string) ([]string, error)
}

type parentChildLister interface {
	ChildIDs(ctx context.Context, parentID string) ([]string, error)
}

// ScopeResolver turns an actor and its explicit filters into the rows it may see.
type ScopeResolver struct {
	classes teacherClassLister
	parents parentChildLister
}

// NewScopeResolver constructs a ScopeResolver.
func NewScopeResolver(classes teacherClassLister, parents parentChildLister) *ScopeResolver {
	return &ScopeResolver{classes: classes, parents: parents}
}

// Resolve returns the restriction for actor. Explicit class and student filters are folded in.
func (r *ScopeResolver) Resolve(ctx context.Context, actor models.Actor, filter models.RecapFilter) (models.RecapScope, error) {
	scope := models.RecapScope{
		ClassIDs:   single(filter.ClassID),
		StudentIDs: single(filter.StudentID),
	}

	switch a := actor.(type) {
	case models.AdminActor:
		return scope, nil

	case models.TeacherActor:
		if filter.ClassID != "" || filter.TaskID != "" || filter.ExamID != "" {
			return scope, nil
		}
		classIDs, err := r.classes.TeacherClassIDs(ctx, a.ID)
		if err != nil {
			return models.RecapScope{}, appErrors.Internal(err, "failed to load teacher classes")
		}
		if len(classIDs) == 0 {
			return models.RecapScope{Empty: true}, nil
		}
		scope.ClassIDs = classIDs
		return scope, nil

	case models.StudentActor:
		scope.StudentIDs = []string{a.ID}
		return scope, nil

	case models.ParentActor:
		children, err := r.parents.ChildIDs(ctx, a.ID)
		if err != nil {
			return models.RecapScope{}, appErrors.Internal(err, "failed to load linked students")
		}
		if filter.StudentID != "" {
			if !contains(children, filter.StudentID) {
				return models.RecapScope{Empty: true}, nil
			}
			return scope, nil
		}
		if len(children) == 0 {
			return models.RecapScope{Empty: true}, nil
		}
		scope.StudentIDs = children
		return scope, nil

	default:
		return models.RecapScope{}, appErrors.Clone(appErrors.ErrForbidden, "unsupported role")
	}
}

func single(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
