// Package api exposes HTTP handlers for the practice statistics service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"example.com/practice/internal/auth"
	"example.com/practice/internal/domain"
	"example.com/practice/internal/observability"
)

// Handler coordinates HTTP requests with the engine.
type Handler struct {
	engine       *domain.Engine
	logger       *log.Logger
	storeTimeout time.Duration
}

// NewHandler builds a Handler. storeTimeout bounds every record store call
// made on behalf of a request.
func NewHandler(engine *domain.Engine, storeTimeout time.Duration, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(log.Writer(), "[api] ", log.LstdFlags)
	}
	return &Handler{engine: engine, logger: logger, storeTimeout: storeTimeout}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/logins", h.logins)
	mux.HandleFunc("/v1/streak", h.streak)
	mux.HandleFunc("/v1/practices", h.practices)
	mux.HandleFunc("/v1/practices/weekly", h.weekly)
	mux.HandleFunc("/v1/practices/today", h.undoToday)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.storeTimeout)
}

// parseLocation resolves the reference timezone for day and week boundaries.
// The engine requires an explicit location; at the HTTP boundary an absent
// tz parameter is documented to mean UTC.
func parseLocation(raw string) (*time.Location, error) {
	if strings.TrimSpace(raw) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(raw)
}

func (h *Handler) logins(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopePracticeWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope practice:write required")
		return
	}

	var req RecordLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	loc, err := parseLocation(req.Timezone)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown timezone")
		return
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	created, err := h.engine.RecordLogin(ctx, req.SubjectID, occurredAt, loc)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordLoginResponse{Recorded: created})
}

func (h *Handler) streak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopePracticeRead) && !claims.HasScope(auth.ScopePracticeWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope practice:read required")
		return
	}

	subjectID := r.URL.Query().Get("subject_id")
	if strings.TrimSpace(subjectID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing subject_id parameter")
		return
	}
	loc, err := parseLocation(r.URL.Query().Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown timezone")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	stats, err := h.engine.ComputeStreak(ctx, subjectID, loc)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		// A transient read failure must not take the dashboard down:
		// serve zero-valued statistics and flag the response as degraded.
		h.logger.Printf("streak read degraded (subject=%s): %v", subjectID, err)
		observability.RecordDegradedRead("streak")
		writeJSON(w, http.StatusOK, StreakResponse{Degraded: true})
		return
	}

	resp := StreakResponse{
		CurrentStreak: stats.CurrentStreak,
		LongestStreak: stats.LongestStreak,
		ActiveToday:   stats.ActiveToday,
	}
	if stats.LastActiveDay != nil {
		day := stats.LastActiveDay.String()
		resp.LastActiveDay = &day
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) practices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopePracticeWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope practice:write required")
		return
	}

	var req RecordPracticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	loc, err := parseLocation(req.Timezone)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown timezone")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	record, replay, err := h.engine.RecordPractice(ctx, domain.RecordPracticeInput{
		SubjectID:       req.SubjectID,
		ItemID:          req.ItemID,
		ItemKind:        domain.ItemKind(req.ItemKind),
		DisplayName:     req.DisplayName,
		PerformedAt:     req.PerformedAt,
		DurationSeconds: req.DurationSeconds,
		Status:          domain.CompletionStatus(req.CompletionStatus),
		Difficulty:      domain.DifficultyRating(req.Difficulty),
		Notes:           req.Notes,
		Location:        loc,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	status := http.StatusCreated
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, RecordPracticeResponse{RecordID: record.ID, Replay: replay})
}

func (h *Handler) weekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopePracticeRead) && !claims.HasScope(auth.ScopePracticeWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope practice:read required")
		return
	}

	subjectID := r.URL.Query().Get("subject_id")
	if strings.TrimSpace(subjectID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing subject_id parameter")
		return
	}
	loc, err := parseLocation(r.URL.Query().Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown timezone")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	itemID := r.URL.Query().Get("item_id")
	if itemID != "" {
		h.weeklySingle(ctx, w, subjectID, itemID, loc)
		return
	}
	h.weeklyAll(ctx, w, subjectID, loc)
}

func (h *Handler) weeklySingle(ctx context.Context, w http.ResponseWriter, subjectID, itemID string, loc *time.Location) {
	stats, weekStart, weekEnd, err := h.engine.WeeklyCount(ctx, subjectID, itemID, loc)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		h.logger.Printf("weekly read degraded (subject=%s item=%s): %v", subjectID, itemID, err)
		observability.RecordDegradedRead("weekly")
		writeJSON(w, http.StatusOK, WeeklyItemResponse{ItemID: itemID, Degraded: true})
		return
	}

	resp := WeeklyItemResponse{
		ItemID:      stats.ItemID,
		DisplayName: stats.DisplayName,
		Count:       stats.Count,
		Records:     toRecordViews(stats.Records),
		DateRange:   DateRange{Start: weekStart, End: weekEnd},
	}
	if !stats.LastPerformed.IsZero() {
		resp.LastPerformed = &stats.LastPerformed
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) weeklyAll(ctx context.Context, w http.ResponseWriter, subjectID string, loc *time.Location) {
	summary, err := h.engine.WeeklyCountAll(ctx, subjectID, loc)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		h.logger.Printf("weekly read degraded (subject=%s): %v", subjectID, err)
		observability.RecordDegradedRead("weekly")
		writeJSON(w, http.StatusOK, WeeklySummaryResponse{Items: map[string]WeeklyItemView{}, Degraded: true})
		return
	}

	items := make(map[string]WeeklyItemView, len(summary.Items))
	for id, stats := range summary.Items {
		view := WeeklyItemView{
			DisplayName: stats.DisplayName,
			Count:       stats.Count,
			Records:     toRecordViews(stats.Records),
		}
		if !stats.LastPerformed.IsZero() {
			last := stats.LastPerformed
			view.LastPerformed = &last
		}
		items[id] = view
	}

	writeJSON(w, http.StatusOK, WeeklySummaryResponse{
		TotalActivities: summary.TotalActivities,
		Items:           items,
		DateRange:       DateRange{Start: summary.WeekStart, End: summary.WeekEnd},
	})
}

func (h *Handler) undoToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopePracticeWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope practice:write required")
		return
	}

	subjectID := r.URL.Query().Get("subject_id")
	itemID := r.URL.Query().Get("item_id")
	if strings.TrimSpace(subjectID) == "" || strings.TrimSpace(itemID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "subject_id and item_id are required")
		return
	}
	loc, err := parseLocation(r.URL.Query().Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown timezone")
		return
	}

	ctx, cancel := h.storeContext(r)
	defer cancel()

	deleted, err := h.engine.UndoTodayPractice(ctx, subjectID, itemID, loc)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UndoTodayResponse{Deleted: deleted})
}

// writeEngineError maps domain errors onto HTTP status codes for write
// paths. Write failures never degrade; the caller must see them.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "store_timeout", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// RecordLoginRequest is the payload for POST /v1/logins.
type RecordLoginRequest struct {
	SubjectID  string    `json:"subject_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Timezone   string    `json:"tz"`
}

// Validate ensures request correctness.
func (r RecordLoginRequest) Validate() error {
	if strings.TrimSpace(r.SubjectID) == "" {
		return errors.New("subject_id is required")
	}
	return nil
}

// RecordLoginResponse reports whether a new login event was stored.
type RecordLoginResponse struct {
	Recorded bool `json:"recorded"`
}

// RecordPracticeRequest is the payload for POST /v1/practices.
type RecordPracticeRequest struct {
	SubjectID        string    `json:"subject_id"`
	ItemID           string    `json:"item_id"`
	ItemKind         string    `json:"item_kind"`
	DisplayName      string    `json:"display_name"`
	PerformedAt      time.Time `json:"performed_at"`
	DurationSeconds  int       `json:"duration_seconds"`
	CompletionStatus string    `json:"completion_status"`
	Difficulty       string    `json:"difficulty,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Timezone         string    `json:"tz,omitempty"`
}

// RecordPracticeResponse describes the response body for create.
type RecordPracticeResponse struct {
	RecordID string `json:"record_id"`
	Replay   bool   `json:"idempotent_replay"`
}

// StreakResponse is the derived login streak view.
type StreakResponse struct {
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	LastActiveDay *string `json:"last_active_day"`
	ActiveToday   bool    `json:"active_today"`
	Degraded      bool    `json:"degraded,omitempty"`
}

// DateRange bounds a statistics window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RecordView exposes a practice record.
type RecordView struct {
	RecordID        string    `json:"record_id"`
	ItemID          string    `json:"item_id"`
	ItemKind        string    `json:"item_kind"`
	DisplayName     string    `json:"display_name"`
	PerformedAt     time.Time `json:"performed_at"`
	DurationSeconds int       `json:"duration_seconds"`
	Status          string    `json:"completion_status"`
	Difficulty      string    `json:"difficulty,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// WeeklyItemResponse packages single-item weekly statistics.
type WeeklyItemResponse struct {
	ItemID        string       `json:"item_id"`
	DisplayName   string       `json:"display_name,omitempty"`
	Count         int          `json:"count"`
	LastPerformed *time.Time   `json:"last_performed,omitempty"`
	Records       []RecordView `json:"records"`
	DateRange     DateRange    `json:"date_range"`
	Degraded      bool         `json:"degraded,omitempty"`
}

// WeeklyItemView is one item's slice of a weekly summary.
type WeeklyItemView struct {
	DisplayName   string       `json:"display_name"`
	Count         int          `json:"count"`
	LastPerformed *time.Time   `json:"last_performed,omitempty"`
	Records       []RecordView `json:"records"`
}

// WeeklySummaryResponse packages all-items weekly statistics.
type WeeklySummaryResponse struct {
	TotalActivities int                       `json:"total_activities"`
	Items           map[string]WeeklyItemView `json:"items"`
	DateRange       DateRange                 `json:"date_range"`
	Degraded        bool                      `json:"degraded,omitempty"`
}

// UndoTodayResponse reports whether today's completion was removed.
type UndoTodayResponse struct {
	Deleted bool `json:"deleted"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toRecordViews(records []domain.PracticeRecord) []RecordView {
	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, RecordView{
			RecordID:        rec.ID,
			ItemID:          rec.ItemID,
			ItemKind:        string(rec.ItemKind),
			DisplayName:     rec.DisplayName,
			PerformedAt:     rec.PerformedAt,
			DurationSeconds: rec.DurationSeconds,
			Status:          string(rec.Status),
			Difficulty:      string(rec.Difficulty),
			Notes:           rec.Notes,
		})
	}
	return views
}
