package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/wedding-invites-and-seating/internal/auth"
	"github.com/robertarktes/wedding-invites-and-seating/internal/config"
	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
	"github.com/robertarktes/wedding-invites-and-seating/internal/idempotency"
	"github.com/robertarktes/wedding-invites-and-seating/internal/invite"
	"github.com/robertarktes/wedding-invites-and-seating/internal/observability"
	"github.com/robertarktes/wedding-invites-and-seating/internal/seating"
	"golang.org/x/sync/errgroup"
)

// GuestDirectory is the guest record store the handlers drive.
type GuestDirectory interface {
	Create(ctx context.Context, input domain.GuestInput) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Guest, error)
	List(ctx context.Context) ([]domain.Guest, error)
	Update(ctx context.Context, id string, update domain.GuestUpdate) (*domain.Guest, error)
	Delete(ctx context.Context, id string) (bool, error)
	MarkInvited(ctx context.Context, id string) (*domain.Guest, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

type Handlers struct {
	cfg    *config.Config
	guests GuestDirectory
	engine *seating.Engine
	auth   *auth.Service
	idemp  *idempotency.Idempotency
	events EventPublisher
	logger observability.Logger
}

func NewHandlers(cfg *config.Config, guests GuestDirectory, engine *seating.Engine, authSvc *auth.Service, idemp *idempotency.Idempotency, events EventPublisher, logger observability.Logger) *Handlers {
	return &Handlers{
		cfg:    cfg,
		guests: guests,
		engine: engine,
		auth:   authSvc,
		idemp:  idemp,
		events: events,
		logger: logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func (h *Handlers) publishEvent(ctx context.Context, key string, payload map[string]interface{}) {
	if h.events == nil {
		return
	}
	body, _ := json.Marshal(payload)
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        body,
	}
	if err := h.events.Publish(ctx, key, msg); err != nil {
		h.logger.WithField("event", key).Error("failed to publish event", err)
	}
}

// --- auth ---

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "invalid-credentials")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Password)
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusUnauthorized, "invalid-credentials")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.TTL().Seconds()),
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.auth.Logout(r.Context(), cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// --- guest directory (admin) ---

func (h *Handlers) ListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.guests.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	stats := guestListStats{Total: len(guests)}
	for _, g := range guests {
		if g.Invited() {
			stats.Invited++
		}
		switch {
		case g.Attending == nil:
			stats.Pending++
		case *g.Attending:
			stats.Attending++
			stats.AttendingHeadcount += g.PartySize
		default:
			stats.Declined++
		}
	}
	stats.NotInvited = stats.Total - stats.Invited

	filter := r.URL.Query().Get("filter")
	filtered := make([]guestResponse, 0, len(guests))
	for _, g := range guests {
		if matchesFilter(g, filter) {
			filtered = append(filtered, toGuestResponse(g))
		}
	}

	writeJSON(w, http.StatusOK, guestListResponse{Guests: filtered, Stats: stats})
}

func matchesFilter(g domain.Guest, filter string) bool {
	switch filter {
	case "invited":
		return g.Invited()
	case "not_invited":
		return !g.Invited()
	case "attending":
		return g.Attending != nil && *g.Attending
	case "declined":
		return g.Attending != nil && !*g.Attending
	case "pending":
		return g.Attending == nil
	default:
		return true
	}
}

func (h *Handlers) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
		PartySize int    `json:"partySize"`
		Language  string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "create-validation")
		return
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	phone := strings.TrimSpace(req.Phone)
	language := domain.Language(req.Language)

	if firstName == "" || lastName == "" || phone == "" || !language.Valid() || req.PartySize <= 0 {
		writeError(w, http.StatusBadRequest, "create-validation")
		return
	}

	id, err := h.guests.Create(r.Context(), domain.GuestInput{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		PartySize: req.PartySize,
		Attending: nil,
		Language:  language,
	})
	if errors.Is(err, domain.ErrDuplicateContact) {
		writeError(w, http.StatusConflict, "duplicate-phone")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handlers) GetGuest(w http.ResponseWriter, r *http.Request) {
	guest, err := h.guests.FindByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown-guest")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, toGuestResponse(*guest))
}

func (h *Handlers) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		Phone     *string `json:"phone"`
		PartySize *int    `json:"partySize"`
		Attending *string `json:"attending"`
		Language  *string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "update-validation")
		return
	}

	update := domain.GuestUpdate{}
	if req.FirstName != nil {
		trimmed := strings.TrimSpace(*req.FirstName)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "update-validation")
			return
		}
		update.FirstName = &trimmed
	}
	if req.LastName != nil {
		trimmed := strings.TrimSpace(*req.LastName)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "update-validation")
			return
		}
		update.LastName = &trimmed
	}
	if req.Phone != nil {
		trimmed := strings.TrimSpace(*req.Phone)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "update-validation")
			return
		}
		update.Phone = &trimmed
	}
	if req.PartySize != nil {
		if *req.PartySize < 0 {
			writeError(w, http.StatusBadRequest, "update-validation")
			return
		}
		update.PartySize = req.PartySize
	}
	if req.Language != nil {
		lang := domain.Language(*req.Language)
		if !lang.Valid() {
			writeError(w, http.StatusBadRequest, "update-validation")
			return
		}
		update.Language = &lang
	}
	if req.Attending != nil {
		update.SetAttending = true
		update.Attending = parseAttending(*req.Attending)
	}

	guest, err := h.guests.Update(r.Context(), chi.URLParam(r, "id"), update)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown-guest")
		return
	}
	if errors.Is(err, domain.ErrDuplicateContact) {
		writeError(w, http.StatusConflict, "duplicate-phone")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	writeJSON(w, http.StatusOK, toGuestResponse(*guest))
}

// parseAttending maps the form answer to the tri-state flag: anything other
// than yes/no means "pending".
func parseAttending(answer string) *bool {
	switch answer {
	case "yes":
		v := true
		return &v
	case "no":
		v := false
		return &v
	default:
		return nil
	}
}

func (h *Handlers) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Strip the guest from the seating plan first so the plan never keeps a
	// reference to a record that is about to vanish.
	if err := h.engine.DetachGuest(r.Context(), h.cfg.PlanSlug, id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	removed, err := h.guests.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handlers) SendInvite(w http.ResponseWriter, r *http.Request) {
	guest, err := h.guests.MarkInvited(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown-guest")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	observability.InvitesSent.Inc()
	h.publishEvent(r.Context(), "guest.invited", map[string]interface{}{
		"guest_id": guest.ID,
		"phone":    guest.Phone,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"guest":        toGuestResponse(*guest),
		"whatsappLink": invite.WhatsAppLink(guest, h.cfg.BaseURL),
		"inviteUrl":    invite.InviteURL(h.cfg.BaseURL, guest.ID),
	})
}

// --- guest-facing RSVP ---

func (h *Handlers) GetInvite(w http.ResponseWriter, r *http.Request) {
	guest, err := h.guests.FindByID(r.Context(), chi.URLParam(r, "guestId"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not-found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	// Public view: no phone, no invite tracking.
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        guest.ID,
		"firstName": guest.FirstName,
		"lastName":  guest.LastName,
		"partySize": guest.PartySize,
		"attending": guest.Attending,
		"language":  guest.Language,
	})
}

func (h *Handlers) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		PartySize int    `json:"partySize"`
		Attending string `json:"attending"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PartySize < 0 {
		writeError(w, http.StatusBadRequest, "rsvp-validation")
		return
	}

	attending := parseAttending(req.Attending)

	// RSVP touches only the guest's own answer; invite tracking is never
	// modified from this path.
	guest, err := h.guests.Update(r.Context(), chi.URLParam(r, "guestId"), domain.GuestUpdate{
		PartySize:    &req.PartySize,
		Attending:    attending,
		SetAttending: true,
	})
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not-found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	answer := "pending"
	if attending != nil {
		if *attending {
			answer = "yes"
		} else {
			answer = "no"
		}
	}
	observability.RSVPSubmissions.WithLabelValues(answer).Inc()
	h.publishEvent(r.Context(), "guest.rsvp.updated", map[string]interface{}{
		"guest_id":   guest.ID,
		"attending":  guest.Attending,
		"party_size": guest.PartySize,
	})

	resp := map[string]interface{}{
		"attending": guest.Attending,
		"partySize": guest.PartySize,
	}
	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)

	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusOK, Result: data})
}

// --- seating ---

func (h *Handlers) GetSeating(w http.ResponseWriter, r *http.Request) {
	var (
		plan   *domain.SeatingPlan
		guests []domain.Guest
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		plan, err = h.engine.Plan(ctx, h.cfg.PlanSlug)
		return err
	})
	g.Go(func() error {
		var err error
		guests, err = h.guests.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	writeJSON(w, http.StatusOK, seatingResponse{
		Plan:  toPlanResponse(plan),
		Stats: toStatsResponse(seating.ComputeStats(plan, guests)),
	})
}

func (h *Handlers) UpdatePlanDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string  `json:"name"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-plan")
		return
	}

	plan, err := h.engine.UpdateDetails(r.Context(), h.cfg.PlanSlug, strings.TrimSpace(req.Name), req.Width, req.Height)
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "invalid-plan")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.publishEvent(r.Context(), "seating.changed", map[string]interface{}{"slug": plan.Slug})
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (h *Handlers) AddTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label    string   `json:"label"`
		Type     string   `json:"type"`
		Capacity *int     `json:"capacity"`
		X        *float64 `json:"x"`
		Y        *float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-table")
		return
	}

	plan, err := h.engine.AddTable(r.Context(), h.cfg.PlanSlug, seating.TableSpec{
		Label:    strings.TrimSpace(req.Label),
		Type:     domain.TableType(req.Type),
		Capacity: req.Capacity,
		X:        req.X,
		Y:        req.Y,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.publishEvent(r.Context(), "seating.changed", map[string]interface{}{"slug": plan.Slug})
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (h *Handlers) UpdateTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label    *string  `json:"label"`
		Type     *string  `json:"type"`
		Capacity *int     `json:"capacity"`
		X        *float64 `json:"x"`
		Y        *float64 `json:"y"`
		Rotation *float64 `json:"rotation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-table")
		return
	}

	update := seating.TableUpdate{
		Label:    req.Label,
		Capacity: req.Capacity,
		X:        req.X,
		Y:        req.Y,
		Rotation: req.Rotation,
	}
	if req.Type != nil {
		t := domain.TableType(*req.Type)
		update.Type = &t
	}

	plan, err := h.engine.UpdateTable(r.Context(), h.cfg.PlanSlug, chi.URLParam(r, "tableId"), update)
	if errors.Is(err, domain.ErrUnknownTable) {
		writeError(w, http.StatusNotFound, "unknown-table")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.publishEvent(r.Context(), "seating.changed", map[string]interface{}{"slug": plan.Slug})
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (h *Handlers) RemoveTable(w http.ResponseWriter, r *http.Request) {
	plan, err := h.engine.RemoveTable(r.Context(), h.cfg.PlanSlug, chi.URLParam(r, "tableId"))
	if errors.Is(err, domain.ErrUnknownTable) {
		writeError(w, http.StatusNotFound, "unknown-table")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.publishEvent(r.Context(), "seating.changed", map[string]interface{}{"slug": plan.Slug})
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

// MoveTable is the drag-commit endpoint. Unlike the form-driven update it
// never reports unknown-table: the table may have been removed by another
// session while the drag was in flight, and a background commit should not
// surface that as a hard failure.
func (h *Handlers) MoveTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid-position")
		return
	}

	plan, err := h.engine.MoveTable(r.Context(), h.cfg.PlanSlug, chi.URLParam(r, "tableId"), req.X, req.Y)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.publishEvent(r.Context(), "seating.changed", map[string]interface{}{"slug": plan.Slug})
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (h *Handlers) AssignGuest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GuestID string `json:"guestId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuestID == "" {
		writeError(w, http.StatusBadRequest, "guest-not-found")
		return
	}

	plan, err := h.engine.AssignGuest(r.Context(), h.cfg.PlanSlug, chi.URLParam(r, "tableId"), req.GuestID)
	switch {
	case errors.Is(err, domain.ErrUnknownGuest):
		writeError(w, http.StatusNotFound, "guest-not-found")
		return
	case errors.Is(err, domain.ErrUnknownTable):
		writeError(w, http.StatusNotFound, "unknown-table")
		return
	case errors.Is(err, domain.ErrTableCapacityExceeded):
		writeError(w, http.StatusConflict, "table-capacity")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.publishEvent(r.Context(), "seating.changed", map[string]interface{}{"slug": plan.Slug})
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

func (h *Handlers) UnassignGuest(w http.ResponseWriter, r *http.Request) {
	guestID := chi.URLParam(r, "guestId")
	if guestID == "" {
		writeError(w, http.StatusBadRequest, "guest-not-found")
		return
	}

	plan, err := h.engine.UnassignGuest(r.Context(), h.cfg.PlanSlug, chi.URLParam(r, "tableId"), guestID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	h.publishEvent(r.Context(), "seating.changed", map[string]interface{}{"slug": plan.Slug})
	writeJSON(w, http.StatusOK, toPlanResponse(plan))
}

// --- ops ---

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
