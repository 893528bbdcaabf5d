package api

import (
	"fmt"
	"net/http"

	"github.com/tcp_snm/arena/internal/service/submission_service"
)

func (a *Api) HandlerSubmit(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Lang string `json:"lang"`
		Code string `json:"code"`
	}
	if err = decodeJsonBody(r.Body, &body); err != nil {
		msg := fmt.Sprintf("invalid request payload, %s", err.Error())
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	recordID, err := a.SubmissionServiceConfig.Submit(r.Context(), submission_service.SubmitRequest{
		DomainID:  domainIDParam(r),
		ContestID: contestID,
		ProblemID: problemID,
		Lang:      body.Lang,
		Code:      body.Code,
	})
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusCreated, map[string]string{"rid": recordID.String()})
}
