package shift

import (
	"context"

	domain "crewcall/internal/domain/shift"
)

// Store persists Teams, shift Templates, Shifts and Assignments.
type Store interface {
	GetTeam(ctx context.Context, id string) (domain.Team, error)
	SaveTeam(ctx context.Context, value domain.Team) error
	DeleteTeam(ctx context.Context, id string) error
	ListTeamsByEvent(ctx context.Context, eventID string) ([]domain.Team, error)

	GetTemplate(ctx context.Context, id string) (domain.Template, error)
	SaveTemplate(ctx context.Context, value domain.Template) error
	DeleteTemplate(ctx context.Context, id string) error
	ListTemplatesByTeam(ctx context.Context, teamID string) ([]domain.Template, error)

	GetShift(ctx context.Context, id string) (domain.Shift, error)
	SaveShift(ctx context.Context, value domain.Shift) error
	DeleteShift(ctx context.Context, id string) error
	DeleteUnlockedByTemplate(ctx context.Context, templateID string) error
	ListShiftsByTeam(ctx context.Context, teamID string) ([]domain.Shift, error)
	ListShiftsByEvent(ctx context.Context, eventID string) ([]domain.Shift, error)

	GetAssignment(ctx context.Context, id string) (domain.Assignment, error)
	SaveAssignment(ctx context.Context, value domain.Assignment) error
	DeleteAssignment(ctx context.Context, id string) error
	ListAssignmentsByShift(ctx context.Context, shiftID string) ([]domain.Assignment, error)
	ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]domain.Assignment, error)
}
