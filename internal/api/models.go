package api

import (
	"github.com/tcp_snm/arena/internal/service/contest_service"
	"github.com/tcp_snm/arena/internal/service/problem_service"
	"github.com/tcp_snm/arena/internal/service/reconcile_service"
	"github.com/tcp_snm/arena/internal/service/submission_service"
)

type Api struct {
	ContestServiceConfig    *contest_service.ContestService
	ProblemServiceConfig    *problem_service.ProblemService
	SubmissionServiceConfig *submission_service.SubmissionService
	ReconcileServiceConfig  *reconcile_service.ReconcileService
}
