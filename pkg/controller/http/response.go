package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/usecase"
	"github.com/secmon-lab/healthbot/pkg/utils/errutil"
	"github.com/secmon-lab/healthbot/pkg/utils/safe"
)

// maxBodySize limits request bodies
const maxBodySize = 1 << 20

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return goerr.Wrap(errBadRequest, "failed to read request body", goerr.V("error", err.Error()))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("error", err.Error()))
	}
	return nil
}

// handleError maps use case errors to HTTP status codes
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrPatientNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrEmptyMessage),
		errors.Is(err, usecase.ErrInvalidPatient),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}
