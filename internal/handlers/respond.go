package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"bakerycost/internal/costing"
	applog "bakerycost/internal/log"
)

var (
	errInvalidPayload = errors.New("invalid request payload")
	errDuplicateName  = errors.New("name already in use")
)

// resourceRoute is the part of a REST path below its collection prefix.
type resourceRoute struct {
	collection bool
	id         uint
	action     string
}

// parseResourceRoute splits "/prefix", "/prefix/{id}" and "/prefix/{id}/{action}".
func parseResourceRoute(path, prefix string) (resourceRoute, bool) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return resourceRoute{collection: true}, true
	}
	segments := strings.Split(rest, "/")
	if len(segments) > 2 {
		return resourceRoute{}, false
	}
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil || idValue == 0 {
		return resourceRoute{}, false
	}
	route := resourceRoute{id: uint(idValue)}
	if len(segments) == 2 {
		route.action = segments[1]
	}
	return route, true
}

// requireAPIAccess rejects requests without a database or an authenticated user.
func requireAPIAccess(w http.ResponseWriter, r *http.Request, resource string) bool {
	if database == nil {
		applog.Debug(r.Context(), "api request without database", "resource", resource)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "api request without authenticated user", "resource", resource)
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidPayload, fmt.Sprintf(format, args...))
}

func validNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, errInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, errDuplicateName):
		return http.StatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, gorm.ErrInvalidDB):
		return http.StatusServiceUnavailable
	case errors.Is(err, costing.ErrDoughNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status code. Server errors are logged and their
// detail is hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		applog.Error(r.Context(), "request failed", "action", action, "error", err)
		writeJSONError(w, status, "unable to "+action)
		return
	}
	applog.Debug(r.Context(), "request rejected", "action", action, "status", status, "error", err)
	writeJSONError(w, status, err.Error())
}

// writeJSON encodes payload before touching the response so an encoding
// failure still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "status", status, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"unable to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body.Bytes()); err != nil {
		applog.Debug(context.Background(), "failed to write json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
