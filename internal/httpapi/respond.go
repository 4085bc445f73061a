package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
	"github.com/gorilla/mux"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
	dateLayout   = "2006-01-02"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps an error code anywhere in err's chain to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.HasCode(err, errors.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.HasCode(err, errors.ErrResourceNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with {"detail": ...}. Internal failures are logged
// and reported without their cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().
			Err(err).
			Str("request_id", RequestID(r.Context())).
			Str("code", string(errors.CodeOf(err))).
			Msg("Request failed")
		writeJSON(w, status, errorBody{Detail: "Internal server error"})
		return
	}
	writeJSON(w, status, errorBody{Detail: err.Error()})
}

func badRequest(msg string) error {
	return errors.New().WithMessage(ErrInvalidRequest, msg)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

// pagination reads skip and limit. Limit defaults to 100 and is capped at 1000.
func pagination(r *http.Request) (int, int, error) {
	q := r.URL.Query()

	skip, err := intParam(q.Get("skip"), "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err := intParam(q.Get("limit"), "limit", defaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, badRequest("skip must not be negative")
	}
	if limit <= 0 {
		return 0, 0, badRequest("limit must be positive")
	}
	return skip, min(limit, maxLimit), nil
}

func intParam(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid " + name + ": " + raw)
	}
	return v, nil
}

func optionalID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, badRequest("invalid " + name + ": " + raw)
	}
	return &v, nil
}

// parseDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, badRequest("invalid date: " + raw)
}

// dateParam reads an optional date query parameter, falling back to fallback.
func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return parseDate(raw)
}

func optionalDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
