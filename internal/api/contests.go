package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/contest_service"
	"github.com/tcp_snm/arena/internal/service/problem_service"
)

func (a *Api) HandlerListContests(w http.ResponseWriter, r *http.Request) {
	claims, err := service.GetClaimsFromContext(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	request := contest_service.ListContestsRequest{DomainID: domainIDParam(r)}
	query := r.URL.Query()
	for _, param := range []struct {
		name   string
		target *int32
	}{
		{"page", &request.Page}, {"page_size", &request.PageSize},
	} {
		raw := query.Get(param.name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid %s, must be an integer", param.name), http.StatusBadRequest)
			return
		}
		*param.target = int32(value)
	}
	if raw := query.Get("rule"); raw != "" {
		rule, err := strconv.ParseInt(raw, 10, 16)
		if err != nil {
			http.Error(w, "invalid rule, must be an integer", http.StatusBadRequest)
			return
		}
		request.Rule = contest_service.Rule(rule)
	}

	page, err := a.ContestServiceConfig.ListContests(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}

	// the caller's own status for each listed contest
	contestIDs := make([]int64, 0, len(page.Contests))
	for _, contest := range page.Contests {
		contestIDs = append(contestIDs, contest.ID)
	}
	statuses, err := a.ContestServiceConfig.GetStatusByContests(
		r.Context(), request.DomainID, claims.UserId, contestIDs,
	)
	if err != nil {
		handlerError(err, w)
		return
	}

	response := struct {
		contest_service.ContestPage
		Statuses map[int64]contest_service.ContestStatus `json:"statuses"`
	}{page, statuses}
	marshalAndRespond(w, http.StatusOK, response)
}

func (a *Api) HandlerCreateContest(w http.ResponseWriter, r *http.Request) {
	var request contest_service.ContestInput
	if err := decodeJsonBody(r.Body, &request); err != nil {
		msg := fmt.Sprintf("invalid request payload, %s", err.Error())
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	contestID, err := a.ContestServiceConfig.CreateContest(r.Context(), domainIDParam(r), request)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusCreated, map[string]int64{"contest_id": contestID})
}

func (a *Api) HandlerGetContest(w http.ResponseWriter, r *http.Request) {
	claims, err := service.GetClaimsFromContext(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	contestID, err := contestIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := a.ContestServiceConfig.GetContestDetail(
		r.Context(), domainIDParam(r), contestID, claims.UserId,
	)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, detail)
}

func (a *Api) HandlerUpdateContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := contestIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var patch contest_service.ContestPatch
	if err = decodeJsonBody(r.Body, &patch); err != nil {
		msg := fmt.Sprintf("invalid request payload, %s", err.Error())
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	contest, err := a.ContestServiceConfig.UpdateContest(r.Context(), domainIDParam(r), contestID, patch)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, contest)
}

func (a *Api) HandlerAttendContest(w http.ResponseWriter, r *http.Request) {
	claims, err := service.GetClaimsFromContext(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	contestID, err := contestIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := a.ContestServiceConfig.Attend(r.Context(), domainIDParam(r), contestID, claims.UserId)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, status)
}

func (a *Api) HandlerGetContestProblem(w http.ResponseWriter, r *http.Request) {
	claims, err := service.GetClaimsFromContext(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	contestID, err := contestIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	problemID, err := problemIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	domainID := domainIDParam(r)
	contest, err := a.ContestServiceConfig.CanViewProblem(
		r.Context(), domainID, contestID, problemID, claims.UserId,
	)
	if err != nil {
		handlerError(err, w)
		return
	}

	problem, err := a.ProblemServiceConfig.GetProblemByID(r.Context(), domainID, problemID)
	if err != nil {
		handlerError(err, w)
		return
	}

	response := struct {
		Contest contest_service.Contest `json:"contest"`
		Problem problem_service.Problem `json:"problem"`
	}{contest, problem}
	marshalAndRespond(w, http.StatusOK, response)
}

func (a *Api) HandlerGetContestStatuses(w http.ResponseWriter, r *http.Request) {
	claims, err := service.GetClaimsFromContext(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}

	contestID, err := contestIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var request struct {
		UserIDs []string `json:"user_ids"`
	}
	if err = decodeJsonBody(r.Body, &request); err != nil {
		msg := fmt.Sprintf("invalid request payload, %s", err.Error())
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	userIDs, err := parseUUIDs(request.UserIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	statuses, err := a.ContestServiceConfig.GetScoreboardStatuses(
		r.Context(), domainIDParam(r), contestID, claims.UserId, userIDs,
	)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, statuses)
}
