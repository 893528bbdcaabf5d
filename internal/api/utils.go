package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

const maxBodyBytes = 1 << 20

func decodeJsonBody(body io.Reader, v any) error {
	decoder := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("cannot decode request body, %w", err)
	}
	return nil
}

func respondWithJson(w http.ResponseWriter, statusCode int, response []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(response); err != nil {
		log.Errorf("cannot write response, %v", err)
	}
}

// marshalAndRespond is the common tail of every handler
func marshalAndRespond(w http.ResponseWriter, statusCode int, response any) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		log.Errorf("unable to marshal %v, %v", response, err)
		http.Error(w, arena_errors.ErrInternal.Error(), http.StatusInternalServerError)
		return
	}
	respondWithJson(w, statusCode, responseBytes)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, arena_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, arena_errors.ErrValidation),
		errors.Is(err, arena_errors.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, arena_errors.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, arena_errors.ErrUnAuthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func handlerError(err error, w http.ResponseWriter) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		// internal details stay in the logs
		http.Error(w, arena_errors.ErrInternal.Error(), status)
		return
	}
	http.Error(w, err.Error(), status)
}

func contestIDParam(r *http.Request) (int64, error) {
	contestID, err := strconv.ParseInt(chi.URLParam(r, "contest_id"), 10, 64)
	if err != nil || contestID <= 0 {
		return 0, errors.New("invalid contest id, contest id must be a positive integer")
	}
	return contestID, nil
}

func problemIDParam(r *http.Request) (int32, error) {
	problemID, err := strconv.ParseInt(chi.URLParam(r, "problem_id"), 10, 32)
	if err != nil || problemID <= 0 {
		return 0, errors.New("invalid problem id, problem id must be a positive integer")
	}
	return int32(problemID), nil
}

func recordIDParam(r *http.Request) (uuid.UUID, error) {
	recordID, err := uuid.Parse(chi.URLParam(r, "record_id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid record id, record id must be a uuid")
	}
	return recordID, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q, must be a uuid", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func domainIDParam(r *http.Request) string {
	return chi.URLParam(r, "domain_id")
}

func (a *Api) HandlerReadiness(w http.ResponseWriter, r *http.Request) {
	respondWithJson(w, http.StatusOK, []byte(`{"status":"ok"}`))
}
