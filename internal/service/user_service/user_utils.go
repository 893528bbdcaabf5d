package user_service

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

func (u *UserService) Start() error {
	if u.DB == nil {
		panic("user service expects non-nil db")
	}

	u.logger = logrus.WithField("from", "user service")

	size := u.CacheSize
	if size <= 0 {
		size = defaultRoleCacheSize
	}
	cache, err := lru.New[roleCacheKey, []string](size)
	if err != nil {
		return fmt.Errorf(
			"%w, cannot create role cache of size %v, %w",
			arena_errors.ErrComponentStart,
			size,
			err,
		)
	}
	u.roleCache = cache
	u.logger.Infof("role cache initialized with size %v", size)

	return nil
}

// extract user roles. roles rarely change, so they are served from cache
// once fetched
func (u *UserService) FetchUserRoles(
	ctx context.Context,
	domainID string,
	userID uuid.UUID,
) ([]string, error) {
	key := roleCacheKey{domainID, userID}
	if u.roleCache != nil {
		if roles, ok := u.roleCache.Get(key); ok {
			return roles, nil
		}
	}

	roles, err := u.DB.GetUserRoles(ctx, domainID, userID)
	if err != nil {
		return nil, arena_errors.HandleDBErrors(
			err,
			nil,
			fmt.Sprintf("cannot fetch roles of user %v in domain %s", userID, domainID),
		)
	}

	if u.roleCache != nil {
		u.roleCache.Add(key, roles)
	}
	return roles, nil
}

func (u *UserService) InvalidateRoles(domainID string, userID uuid.UUID) {
	if u.roleCache != nil {
		u.roleCache.Remove(roleCacheKey{domainID, userID})
	}
}

func (u *UserService) AuthorizeUserRole(
	ctx context.Context,
	domainID string,
	userID uuid.UUID,
	role UserRole,
	warnMessage string,
) error {
	roles, err := u.FetchUserRoles(ctx, domainID, userID)
	if err != nil {
		return err
	}
	if slices.Contains(roles, string(role)) {
		return nil
	}
	if warnMessage != "" {
		logrus.Warn(warnMessage)
	}
	return arena_errors.ErrUnAuthorized
}

// hc can touch anything, managers only what they created
func (u *UserService) AuthorizeCreatorAccess(
	ctx context.Context,
	domainID string,
	creatorID uuid.UUID,
	userID uuid.UUID,
	warnMessage string,
) error {
	// check if they are hc
	err := u.AuthorizeUserRole(ctx, domainID, userID, RoleHC, "")
	if err == nil {
		return nil
	}

	// check if they are manager currently
	err = u.AuthorizeUserRole(ctx, domainID, userID, RoleManager, warnMessage)
	if err != nil {
		return err
	}

	if userID != creatorID {
		if warnMessage != "" {
			logrus.Warn(warnMessage)
		}
		return arena_errors.ErrUnAuthorized
	}

	return nil
}

// CanViewScoreboard reports whether the user may see live records and the
// scoreboard of a contest that has not ended yet.
func (u *UserService) CanViewScoreboard(
	ctx context.Context,
	domainID string,
	userID uuid.UUID,
) (bool, error) {
	roles, err := u.FetchUserRoles(ctx, domainID, userID)
	if err != nil {
		return false, err
	}
	for _, role := range []UserRole{RoleScoreboard, RoleManager, RoleHC} {
		if slices.Contains(roles, string(role)) {
			return true, nil
		}
	}
	return false, nil
}
