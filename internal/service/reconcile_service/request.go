package reconcile_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

// RequestReconcile is the manager facing trigger
func (r *ReconcileService) RequestReconcile(
	ctx context.Context,
	domainID string,
) (uuid.UUID, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	if r.UserService == nil {
		return uuid.Nil, fmt.Errorf(
			"%w, reconcile service has no user service to authorize with",
			arena_errors.ErrInternal,
		)
	}

	// authorize
	err = r.UserService.AuthorizeUserRole(
		ctx, domainID, claims.UserId, user_service.RoleManager,
		fmt.Sprintf(
			"user %s tried for manager access to reconcile domain %s",
			claims.UserName,
			domainID,
		),
	)
	if err != nil {
		return uuid.Nil, err
	}

	runID, err := r.Trigger(ctx, domainID)
	if err != nil {
		return uuid.Nil, err
	}

	logger.WithField("user", claims.UserName).Infof("reconcile of domain %s requested", domainID)
	return runID, nil
}
