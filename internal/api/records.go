package api

import (
	"fmt"
	"net/http"

	"github.com/tcp_snm/arena/internal/service/submission_service"
)

func (a *Api) HandlerGetRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := recordIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := a.SubmissionServiceConfig.GetRecord(r.Context(), recordID)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, record)
}

// HandlerRecordVerdict is the judge callback
func (a *Api) HandlerRecordVerdict(w http.ResponseWriter, r *http.Request) {
	recordID, err := recordIDParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var request submission_service.VerdictRequest
	if err = decodeJsonBody(r.Body, &request); err != nil {
		msg := fmt.Sprintf("invalid request payload, %s", err.Error())
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	record, err := a.SubmissionServiceConfig.ApplyJudgeVerdict(r.Context(), recordID, request)
	if err != nil {
		handlerError(err, w)
		return
	}

	// judges do not need the code back
	record.Code = ""
	marshalAndRespond(w, http.StatusOK, record)
}

// HandlerListProblemRecords lists the caller's recent records on a contest
// problem's submit page
func (a *Api) HandlerListProblemRecords(w http.ResponseWriter, r *http.Request) {
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

	records, err := a.SubmissionServiceConfig.ListUserProblemRecords(
		r.Context(),
		domainIDParam(r),
		contestID,
		problemID,
	)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, map[string]any{"records": records})
}
