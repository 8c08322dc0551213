package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/ctxutil"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/workflow"
)

func utcNow() time.Time { return time.Now().UTC() }

// inTx runs fn inside a transaction, nested under dbc.Tx when the caller
// already holds one.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	return transaction.WithContext(ctxutil.Default(dbc.Ctx)).Transaction(func(txx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctxutil.Default(dbc.Ctx), Tx: txx})
	})
}

// bump advances invalidation markers after a committed write. Failures are
// logged and swallowed; readers fall back to their refresh interval.
func bump(ctx context.Context, log *logger.Logger, markers invalidation.Markers, names ...string) {
	if markers == nil {
		return
	}
	ctx = ctxutil.Default(ctx)
	for _, name := range names {
		if _, err := markers.Bump(ctx, name); err != nil {
			log.Warn("Invalidation bump failed", "marker", name, "error", err)
		}
	}
}

// actor returns the user the request acts as.
func actor(ctx context.Context) (uuid.UUID, users.Role, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, "", fmt.Errorf("%w: no acting user", perr.ErrUnauthorized)
	}
	return rd.UserID, users.NormalizeRole(rd.Role), nil
}

// requireStaff returns the acting user when they are office staff or an admin.
func requireStaff(ctx context.Context) (uuid.UUID, error) {
	id, role, err := actor(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if role != users.RoleAdmin && role != users.RoleOffice {
		return uuid.Nil, fmt.Errorf("%w: role %q cannot manage jobs and quotes", perr.ErrForbidden, role)
	}
	return id, nil
}

// requireTask returns the acting user when their role may perform the
// workflow task.
func requireTask(ctx context.Context, wf *workflow.Config, taskID string) (uuid.UUID, error) {
	id, role, err := actor(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if err := wf.CanPerformTask(role, taskID); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func requireID(name string, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: missing %s", perr.ErrInvalidArgument, name)
	}
	return nil
}

func requireText(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", perr.ErrInvalidArgument, name)
	}
	return nil
}
