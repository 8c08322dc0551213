package workflow

import (
	"fmt"

	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
)

// ValidateTransition checks that moving a job from one status to another is
// allowed regardless of who asks. Main-line moves may skip forward or step
// back one status; any live job can be put on hold or cancelled, and a held
// job can resume at any main-line status.
func (c *Config) ValidateTransition(from, to jobs.JobStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", perr.ErrInvalidArgument, to)
	}
	if from == to {
		return fmt.Errorf("%w: job is already %s", perr.ErrConflict, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", perr.ErrConflict, from)
	}
	if to == jobs.StatusCancelled || to == jobs.StatusOnHold {
		return nil
	}
	if from == jobs.StatusOnHold {
		return nil
	}
	fi, ti := c.Index(from), c.Index(to)
	if fi < 0 || ti < 0 {
		return fmt.Errorf("%w: cannot move from %s to %s", perr.ErrConflict, from, to)
	}
	if ti < fi-1 {
		return fmt.Errorf("%w: cannot move back from %s to %s", perr.ErrConflict, from, to)
	}
	return nil
}

type techMove struct{ from, to jobs.JobStatus }

// Technicians may only start work and hand it back for review.
var techMoves = map[techMove]bool{
	{jobs.StatusScheduled, jobs.StatusInProgress}:         true,
	{jobs.StatusInProgress, jobs.StatusPendingCompletion}: true,
}

// CanChangeStatus applies ValidateTransition and then the role rules.
func (c *Config) CanChangeStatus(role users.Role, from, to jobs.JobStatus) error {
	if err := c.ValidateTransition(from, to); err != nil {
		return err
	}
	switch role {
	case users.RoleAdmin, users.RoleOffice:
		return nil
	case users.RoleTech:
		if techMoves[techMove{from, to}] {
			return nil
		}
		return fmt.Errorf("%w: technicians cannot move a job from %s to %s", perr.ErrForbidden, from, to)
	default:
		return fmt.Errorf("%w: role %q cannot change job status", perr.ErrForbidden, role)
	}
}
