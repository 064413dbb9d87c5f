package orchestrators

import (
	"context"
	"log/slog"

	"crewcall/internal/domain/shift"
	"crewcall/internal/domain/volunteer"
)

// VolunteerStoreForWithdraw defines the store interface needed by Withdraw.
type VolunteerStoreForWithdraw interface {
	GetByID(ctx context.Context, id string) (volunteer.Volunteer, error)
	Save(ctx context.Context, v volunteer.Volunteer) error
}

// AssignmentCleaner removes a volunteer's assignments after withdrawal.
type AssignmentCleaner interface {
	ListAssignmentsByVolunteer(ctx context.Context, volunteerID string) ([]shift.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// WithdrawDeps holds dependencies for Withdraw.
type WithdrawDeps struct {
	VolunteerStore VolunteerStoreForWithdraw
	Assignments    AssignmentCleaner
}

// ExecuteWithdraw marks a volunteer as withdrawn and releases their assignments.
// PRE: VolunteerID names an existing volunteer
// POST: Status is withdrawn; all assignments are deleted
func ExecuteWithdraw(ctx context.Context, volunteerID string, deps WithdrawDeps) error {
	vol, err := deps.VolunteerStore.GetByID(ctx, volunteerID)
	if err != nil {
		return err
	}
	if err := vol.Withdraw(); err != nil {
		return err
	}
	if err := deps.VolunteerStore.Save(ctx, vol); err != nil {
		return err
	}

	if deps.Assignments != nil {
		assignments, err := deps.Assignments.ListAssignmentsByVolunteer(ctx, volunteerID)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if err := deps.Assignments.DeleteAssignment(ctx, a.ID); err != nil {
				return err
			}
		}
		slog.Info("application_event", "event", "assignments_released", "volunteer_id", volunteerID, "count", len(assignments))
	}

	slog.Info("application_event", "event", "volunteer_withdrawn", "volunteer_id", volunteerID)
	return nil
}
