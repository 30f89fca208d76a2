package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/notifyengine/pkg/httpserver"
	"github.com/dmitrymomot/notifyengine/pkg/logger"
	"github.com/dmitrymomot/notifyengine/pkg/notifications"
	"github.com/dmitrymomot/notifyengine/pkg/validator"
)

const maxRequestBody = 64 << 10

// response is the envelope of every JSON body except the health probes.
type response struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *errorDetail   `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

type api struct {
	manager *notifications.Manager
	log     *slog.Logger
}

func newRouter(manager *notifications.Manager, log *slog.Logger, checks map[string]httpserver.Check) http.Handler {
	a := &api{manager: manager, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, checks))

	r.Post("/notifications", a.create)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/feed", a.feed)
		r.Get("/analytics", a.analytics)
		r.Get("/engagement", a.engagement)
		r.Get("/notifications", a.list)
		r.Get("/notifications/unread-count", a.unreadCount)
		r.Post("/notifications/read-all", a.markAllRead)
		r.Get("/notifications/{id}", a.get)
		r.Post("/notifications/{id}/read", a.markRead)
	})
	return r
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	var req notifications.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: &errorDetail{
			Code:    "invalid_json",
			Message: err.Error(),
		}})
		return
	}

	n, err := a.manager.Create(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if n == nil {
		writeJSON(w, http.StatusAccepted, response{Meta: map[string]any{"throttled": true}})
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: n})
}

func (a *api) feed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items, err := a.manager.Feed(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: items, Meta: map[string]any{"count": len(items)}})
}

func (a *api) analytics(w http.ResponseWriter, r *http.Request) {
	out, err := a.manager.Analytics(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: out})
}

func (a *api) engagement(w http.ResponseWriter, r *http.Request) {
	stats, err := a.manager.Engagement(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: stats})
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items, err := a.manager.List(r.Context(), filter)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: items, Meta: map[string]any{
		"count":  len(items),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	}})
}

func (a *api) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := a.manager.CountUnread(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]int{"unread": n}})
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	n, err := a.manager.Get(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: n})
}

func (a *api) markRead(w http.ResponseWriter, r *http.Request) {
	userID, id := chi.URLParam(r, "userID"), chi.URLParam(r, "id")
	if _, err := a.manager.Get(r.Context(), userID, id); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.manager.MarkRead(r.Context(), userID, id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := a.manager.MarkAllRead(r.Context(), chi.URLParam(r, "userID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps engine errors to HTTP statuses. Unexpected errors are logged and
// reported without their message.
func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		writeJSON(w, http.StatusUnprocessableEntity, response{Error: &errorDetail{
			Code:    "validation_error",
			Message: "validation failed",
			Details: ve.Map(),
		}})
		return
	}

	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, notifications.ErrUserIDRequired):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, notifications.ErrNotificationNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, notifications.ErrThrottleLock):
		status, code = http.StatusServiceUnavailable, "service_unavailable"
	default:
		a.log.ErrorContext(r.Context(), "Request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}

	msg := http.StatusText(status)
	if status == http.StatusBadRequest || status == http.StatusNotFound {
		msg = err.Error()
	}
	writeJSON(w, status, response{Error: &errorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func listFilter(r *http.Request) (notifications.Filter, error) {
	q := r.URL.Query()
	f := notifications.Filter{
		UserID:   chi.URLParam(r, "userID"),
		Category: notifications.Category(q.Get("category")),
	}

	var errs validator.ValidationErrors
	if v := q.Get("unread"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "unread", Message: "must be a boolean"})
		} else {
			f.Read = notifications.Bool(!unread)
		}
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		errs = append(errs, validator.ExtractValidationErrors(err)...)
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		errs = append(errs, validator.ExtractValidationErrors(err)...)
	}
	f.Limit, f.Offset = limit, offset

	if len(errs) > 0 {
		return notifications.Filter{}, errs
	}
	return f, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, validator.ValidationErrors{{Field: name, Message: "must be a non-negative integer"}}
	}
	return n, nil
}
