package problem_service

import (
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

var (
	errMsgs = map[string]map[string]string{}
)

type ProblemService struct {
	DB                database.Querier
	UserServiceConfig *user_service.UserService
}

type ProblemInput struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
}

type Problem struct {
	DomainID  string    `json:"domain_id"`
	ID        int32     `json:"problem_id"`
	Title     string    `json:"title"`
	OwnerUID  uuid.UUID `json:"owner_uid"`
	CreatedAt time.Time `json:"created_at"`
}

func dbProblemToServiceProblem(p database.Problem) Problem {
	return Problem{
		DomainID:  p.DomainID,
		ID:        p.DocID,
		Title:     p.Title,
		OwnerUID:  p.OwnerUID,
		CreatedAt: p.CreatedAt,
	}
}
