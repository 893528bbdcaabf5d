package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/tcp_snm/arena/internal/api"
	"github.com/tcp_snm/arena/middleware"
)

func NewV1Router(apiConfig *api.Api, auth middleware.JWTAuth) *chi.Mux {
	v1 := chi.NewRouter()

	// configure all endpoints
	v1.Get("/healthz", apiConfig.HandlerReadiness)

	v1.Route("/d/{domain_id}", func(d chi.Router) {
		// contests layer
		d.Get("/contests", auth.JWTMiddleware(apiConfig.HandlerListContests))
		d.Post("/contests", auth.JWTMiddleware(apiConfig.HandlerCreateContest))
		d.Get("/contests/{contest_id}", auth.JWTMiddleware(apiConfig.HandlerGetContest))
		d.Put("/contests/{contest_id}", auth.JWTMiddleware(apiConfig.HandlerUpdateContest))
		d.Post("/contests/{contest_id}/attend", auth.JWTMiddleware(apiConfig.HandlerAttendContest))
		d.Post("/contests/{contest_id}/status", auth.JWTMiddleware(apiConfig.HandlerGetContestStatuses))
		d.Get(
			"/contests/{contest_id}/problems/{problem_id}",
			auth.JWTMiddleware(apiConfig.HandlerGetContestProblem),
		)
		d.Post(
			"/contests/{contest_id}/problems/{problem_id}/submit",
			auth.JWTMiddleware(apiConfig.HandlerSubmit),
		)
		d.Get(
			"/contests/{contest_id}/problems/{problem_id}/submit",
			auth.JWTMiddleware(apiConfig.HandlerListProblemRecords),
		)

		// problems layer
		d.Post("/problems", auth.JWTMiddleware(apiConfig.HandlerAddProblem))

		// counters
		d.Post("/reconcile", auth.JWTMiddleware(apiConfig.HandlerReconcileDomain))
	})

	v1.Get("/reconcile/runs", auth.JWTMiddleware(apiConfig.HandlerGetReconcileRun))

	// records layer
	v1.Get("/records/{record_id}", auth.JWTMiddleware(apiConfig.HandlerGetRecord))
	v1.Post("/records/{record_id}/verdict", auth.JWTMiddleware(apiConfig.HandlerRecordVerdict))

	return v1
}
