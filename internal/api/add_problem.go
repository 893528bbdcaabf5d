package api

import (
	"fmt"
	"net/http"

	"github.com/tcp_snm/arena/internal/service/problem_service"
)

func (a *Api) HandlerAddProblem(w http.ResponseWriter, r *http.Request) {
	var request problem_service.ProblemInput
	if err := decodeJsonBody(r.Body, &request); err != nil {
		msg := fmt.Sprintf("invalid request payload, %s", err.Error())
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	problem, err := a.ProblemServiceConfig.AddProblem(r.Context(), domainIDParam(r), request)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusCreated, problem)
}
