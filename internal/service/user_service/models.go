package user_service

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/database"
)

const defaultRoleCacheSize = 1024

type UserService struct {
	DB        database.Querier
	CacheSize int
	roleCache *lru.Cache[roleCacheKey, []string]
	logger    *logrus.Entry
}

type UserRole string

const (
	RoleManager    UserRole = "role_manager"
	RoleHC         UserRole = "role_hc"
	RoleScoreboard UserRole = "role_scoreboard"
	// held by judge workers that report verdicts back
	RoleJudge UserRole = "role_judge"
)

type roleCacheKey struct {
	domainID string
	userID   uuid.UUID
}
