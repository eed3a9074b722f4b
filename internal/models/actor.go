package models

// Actor is the authenticated caller. The set of implementations is closed.
type Actor interface {
	ActorID() string
	Role() UserRole
	actor()
}

type AdminActor struct{ ID string }

type TeacherActor struct{ ID string }

type StudentActor struct{ ID string }

type ParentActor struct{ ID string }

func (a AdminActor) ActorID() string   { return a.ID }
func (a TeacherActor) ActorID() string { return a.ID }
func (a StudentActor) ActorID() string { return a.ID }
func (a ParentActor) ActorID() string  { return a.ID }

func (AdminActor) Role() UserRole   { return RoleAdmin }
func (TeacherActor) Role() UserRole { return RoleTeacher }
func (StudentActor) Role() UserRole { return RoleStudent }
func (ParentActor) Role() UserRole  { return RoleParent }

func (AdminActor) actor()   {}
func (TeacherActor) actor() {}
func (StudentActor) actor() {}
func (ParentActor) actor()  {}

// NewActor maps a user id and role onto its Actor. It reports false for unknown roles.
func NewActor(id string, role UserRole) (Actor, bool) {
	if id == "" {
		return nil, false
	}
	switch role {
	case RoleAdmin:
		return AdminActor{ID: id}, true
	case RoleTeacher:
		return TeacherActor{ID: id}, true
	case RoleStudent:
		return StudentActor{ID: id}, true
	case RoleParent:
		return ParentActor{ID: id}, true
	default:
		return nil, false
	}
}
