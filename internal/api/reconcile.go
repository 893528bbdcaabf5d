package api

import (
	"net/http"

	"github.com/google/uuid"
)

func (a *Api) HandlerReconcileDomain(w http.ResponseWriter, r *http.Request) {
	runID, err := a.ReconcileServiceConfig.RequestReconcile(r.Context(), domainIDParam(r))
	if err != nil {
		handlerError(err, w)
		return
	}

	response := map[string]any{"queued": true}
	if runID != uuid.Nil {
		response["run_id"] = runID
	}
	marshalAndRespond(w, http.StatusAccepted, response)
}

func (a *Api) HandlerGetReconcileRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.URL.Query().Get("run_id"))
	if err != nil {
		http.Error(w, "invalid run id, run id must be a uuid", http.StatusBadRequest)
		return
	}

	run, err := a.ReconcileServiceConfig.GetRun(runID)
	if err != nil {
		handlerError(err, w)
		return
	}

	marshalAndRespond(w, http.StatusOK, run)
}
