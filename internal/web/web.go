// Package web exposes the session logic to the embedded mini-app UI as a
// small JSON API. The UI stays dumb: grid layout, draft validation and
// backend submission all happen here.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"remindcal/internal/calendar"
	"remindcal/internal/config"
	"remindcal/internal/editor"
	"remindcal/internal/gateway"
	applog "remindcal/internal/log"
	"remindcal/internal/model"
	"remindcal/internal/recurrence"
)

const remindersCacheTTL = 30 * time.Second

// Server provides the HTTP API consumed by the embedded UI.
type Server struct {
	cfg *config.Config
	gw  gateway.Gateway
	loc *time.Location
	now func() time.Time
	mux *http.ServeMux

	// In-memory cache of the reminder list so that month navigation does
	// not hit the backend on every request. Mutations invalidate it.
	remindersMu    sync.RWMutex
	remindersCache *remindersCache
}

type remindersCache struct {
	userID    string
	list      []model.Reminder
	updatedAt time.Time
}

// NewServer constructs a Server. loc is the display timezone (nil means
// time.Local).
func NewServer(cfg *config.Config, gw gateway.Gateway, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg: cfg,
		gw:  gw,
		loc: loc,
		now: time.Now,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with Basic Auth
// when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		applog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Treat an empty username or password as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="remindcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/day", s.handleDay)
	s.mux.HandleFunc("POST /api/submit", s.handleSubmit)
	s.mux.HandleFunc("POST /api/delete", s.handleDelete)
	s.mux.HandleFunc("GET /api/notes", s.handleNotes)
	s.mux.HandleFunc("POST /api/notes/save", s.handleNoteSave)
	s.mux.HandleFunc("POST /api/notes/delete", s.handleNoteDelete)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// calendarResponse is the JSON shape for /api/calendar.
type calendarResponse struct {
	Success bool            `json:"success"`
	Label   string          `json:"label"`
	Year    int             `json:"year"`
	Month   int             `json:"month"`
	Cells   []calendar.Cell `json:"cells"`
}

// handleCalendar returns the month grid.
//
// GET /api/calendar?user_id=..&year=2025&month=3
// year/month default to the current month.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := s.now().In(s.loc)

	m := calendar.Month{
		Year:  parseIntDefault(q.Get("year"), now.Year()),
		Month: time.Month(parseIntDefault(q.Get("month"), int(now.Month()))),
	}
	if m.Month < time.January || m.Month > time.December {
		writeError(w, http.StatusBadRequest, "month out of range")
		return
	}

	reminders := s.cachedReminders(r.Context(), s.userID(q.Get("user_id")))
	writeJSON(w, http.StatusOK, calendarResponse{
		Success: true,
		Label:   m.Label(),
		Year:    m.Year,
		Month:   int(m.Month),
		Cells:   calendar.Layout(m, reminders, now),
	})
}

// reminderDTO is the JSON-friendly view of a reminder.
type reminderDTO struct {
	ID         int64  `json:"id"`
	Message    string `json:"message"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Recurrence string `json:"recurrence,omitempty"`
}

// handleDay returns the reminders falling on one calendar day, in backend
// order.
//
// GET /api/day?user_id=..&date=2025-03-10
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateKey := q.Get("date")
	if _, err := time.Parse(model.DateKeyLayout, dateKey); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	reminders := s.cachedReminders(r.Context(), s.userID(q.Get("user_id")))
	onDay := calendar.RemindersOn(dateKey, reminders)

	dtos := make([]reminderDTO, 0, len(onDay))
	for _, rem := range onDay {
		at := rem.Occurrence.FiresAt()
		dto := reminderDTO{
			ID:      rem.ID,
			Message: rem.Message,
			Date:    at.Format(model.DateKeyLayout),
			Time:    at.Format("15:04"),
		}
		if rec, ok := rem.Occurrence.(model.Recurring); ok {
			dto.Recurrence = rec.Rule
		}
		dtos = append(dtos, dto)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"date":      dateKey,
		"reminders": dtos,
	})
}

// submitRequest is the form state posted by the edit surface.
type submitRequest struct {
	UserID    string   `json:"user_id"`
	ID        int64    `json:"id"`
	Message   string   `json:"message"`
	Date      string   `json:"date"` // "YYYY-MM-DD", one-time only
	Time      string   `json:"time"` // "HH:MM"
	Recurring bool     `json:"recurring"`
	Days      []string `json:"days"` // two-letter tokens, recurring only
}

// handleSubmit validates the posted form via the editor and forwards the
// built payload to the backend. Validation failures come back as 400 with
// an inline message and never reach the backend.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	init := editor.Init{ID: req.ID, Message: req.Message}
	if req.Recurring {
		// Enters the recurring editor with an empty day set; the posted
		// days are applied below.
		init.Recurrence = "FREQ=WEEKLY"
	}
	draft := editor.New(init, s.now)

	if req.Recurring {
		for _, tok := range req.Days {
			if day, ok := recurrence.ParseToken(tok); ok {
				draft.ToggleDay(day)
			}
		}
	} else if err := draft.SetDate(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	if err := draft.SetTime(req.Time); err != nil {
		writeError(w, http.StatusBadRequest, "invalid time")
		return
	}

	sub, err := draft.Submission()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.gw.SubmitReminder(r.Context(), s.userID(req.UserID), sub)
	if err != nil {
		s.writeGatewayError(w, "submit failed", err)
		return
	}

	s.invalidateReminders()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// handleDelete removes a reminder.
//
// POST /api/delete {"user_id": .., "id": ..}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		ID     int64  `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.gw.DeleteReminder(r.Context(), s.userID(req.UserID), req.ID); err != nil {
		s.writeGatewayError(w, "delete failed", err)
		return
	}

	s.invalidateReminders()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleNotes lists the user's notes. A failed read degrades to an empty
// list; the notes tab must still render.
func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	userID := s.userID(r.URL.Query().Get("user_id"))
	notes, err := s.gw.ListNotes(r.Context(), userID)
	if err != nil {
		applog.Error("listing notes failed; returning empty list", err, "user", userID)
		notes = nil
	}

	type noteDTO struct {
		ID        int64  `json:"id"`
		Content   string `json:"content"`
		CreatedAt string `json:"created_at,omitempty"`
	}
	dtos := make([]noteDTO, 0, len(notes))
	for _, n := range notes {
		dto := noteDTO{ID: n.ID, Content: n.Content}
		if !n.CreatedAt.IsZero() {
			dto.CreatedAt = n.CreatedAt.Format(model.WireTimeLayout)
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notes": dtos})
}

func (s *Server) handleNoteSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID      int64  `json:"id"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "note content must not be empty")
		return
	}

	if err := s.gw.UpdateNote(r.Context(), req.ID, req.Content); err != nil {
		s.writeGatewayError(w, "note save failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleNoteDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.gw.DeleteNote(r.Context(), req.ID); err != nil {
		s.writeGatewayError(w, "note delete failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// cachedReminders returns the cached reminder list for userID, fetching
// when stale. A failed fetch degrades to an empty list (logged), so the
// calendar always renders.
func (s *Server) cachedReminders(ctx context.Context, userID string) []model.Reminder {
	now := s.now()

	s.remindersMu.RLock()
	cache := s.remindersCache
	s.remindersMu.RUnlock()
	if cache != nil && cache.userID == userID && now.Sub(cache.updatedAt) < remindersCacheTTL {
		return cache.list
	}

	list, err := s.gw.ListReminders(ctx, userID)
	if err != nil {
		applog.Error("listing reminders failed; rendering empty calendar", err, "user", userID)
		return nil
	}

	s.remindersMu.Lock()
	s.remindersCache = &remindersCache{userID: userID, list: list, updatedAt: s.now()}
	s.remindersMu.Unlock()
	return list
}

func (s *Server) invalidateReminders() {
	s.remindersMu.Lock()
	s.remindersCache = nil
	s.remindersMu.Unlock()
}

// RefreshCache eagerly reloads the reminder cache for the configured user.
// Wired to the serve-mode cron schedule.
func (s *Server) RefreshCache(ctx context.Context) {
	s.invalidateReminders()
	_ = s.cachedReminders(ctx, s.cfg.UserID)
}

// userID applies the configured default user.
func (s *Server) userID(fromRequest string) string {
	if fromRequest != "" {
		return fromRequest
	}
	return s.cfg.UserID
}

// writeGatewayError maps gateway failures onto the response envelope,
// preserving the server-provided detail when there is one.
func (s *Server) writeGatewayError(w http.ResponseWriter, msg string, err error) {
	applog.Error(msg, err)

	status := http.StatusBadGateway
	detail := err.Error()
	var se *gateway.ServerError
	if errors.As(err, &se) {
		status = se.Status
		if se.Detail != "" {
			detail = se.Detail
		}
	}
	if errors.Is(err, gateway.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeError(w, status, detail)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
