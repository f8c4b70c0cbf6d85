package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"binrent/internal/instance"
	"binrent/internal/opt"
	"binrent/internal/store"
)

// Problem is an RFC 7807 body. Type stays about:blank so Title carries the
// meaning.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// writeError maps the package sentinels to a status and writes the problem.
func writeError(w http.ResponseWriter, r *http.Request, title string, err error) {
	writeProblem(w, statusFor(err), title, err.Error(), r.URL.Path)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, instance.ErrInvalid), errors.Is(err, opt.ErrUnknownAlgorithm):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away; nginx's non-standard code
		return 499
	}
	return http.StatusInternalServerError
}
