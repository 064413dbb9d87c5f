package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"crewcall/internal/domain/shift"
)

// ShiftStoreForRespond defines the shift store interface needed by RespondAssignment.
type ShiftStoreForRespond interface {
	GetAssignment(ctx context.Context, id string) (shift.Assignment, error)
	SaveAssignment(ctx context.Context, a shift.Assignment) error
}

// RespondAssignmentInput carries a volunteer's answer to an assignment.
type RespondAssignmentInput struct {
	AssignmentID string
	VolunteerID  string
	Confirm      bool
}

// RespondAssignmentDeps holds dependencies for RespondAssignment.
type RespondAssignmentDeps struct {
	ShiftStore ShiftStoreForRespond
	Now        func() time.Time
}

var ErrNotYourAssignment = errors.New("assignment belongs to another volunteer")

// ExecuteRespondAssignment records a volunteer confirming or declining an
// assignment. Only the assigned volunteer may respond, and only once.
// PRE: AssignmentID names an existing assignment in assigned status
// POST: Assignment status is confirmed or declined with DecidedAt set
func ExecuteRespondAssignment(ctx context.Context, input RespondAssignmentInput, deps RespondAssignmentDeps) error {
	a, err := deps.ShiftStore.GetAssignment(ctx, input.AssignmentID)
	if err != nil {
		return err
	}
	if a.VolunteerID != input.VolunteerID {
		slog.Warn("shift_event", "event", "assignment_response_denied",
			"assignment_id", a.ID, "volunteer_id", input.VolunteerID)
		return ErrNotYourAssignment
	}

	if input.Confirm {
		err = a.Confirm(deps.Now())
	} else {
		err = a.Decline(deps.Now())
	}
	if err != nil {
		return err
	}
	if err := deps.ShiftStore.SaveAssignment(ctx, a); err != nil {
		return err
	}

	slog.Info("shift_event", "event", "assignment_response",
		"assignment_id", a.ID, "volunteer_id", a.VolunteerID, "status", a.Status)
	return nil
}
