package notification

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nexus/internal/roles"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/platform/httputil"
	"nexus/pkg/requestcontext"
)

// Handler wires the notification read surface plus the admin dispatch and
// retention endpoints.
type Handler struct {
	service *Service
	router  *Router
	sweeper *Sweeper
	logger  *slog.Logger
}

func NewHandler(service *Service, router *Router, sweeper *Sweeper, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		router:  router,
		sweeper: sweeper,
		logger:  logger,
	}
}

// Register mounts notification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Get("/notifications/unread-count", h.HandleUnreadCount)
	r.Patch("/notifications/{id}/read", h.HandleMarkRead)
	r.Post("/admin/notifications", h.HandleAdminDispatch)
	r.Post("/admin/retention/sweep", h.HandleSweep)
}

type notificationResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Severity    string     `json:"severity"`
	Category    string     `json:"category"`
	IsGlobal    bool       `json:"is_global"`
	IsDirective bool       `json:"is_directive"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HandleList handles GET /notifications.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	visible, err := h.service.ListVisible(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]notificationResponse, 0, len(visible))
	for _, v := range visible {
		out = append(out, notificationResponse{
			ID:          v.ID.String(),
			Title:       v.Title,
			Body:        v.Body,
			Severity:    string(v.Severity),
			Category:    string(v.Category),
			IsGlobal:    v.Scope.Global,
			IsDirective: v.IsDirective,
			Read:        v.Read,
			ReadAt:      v.ReadAt,
			CreatedAt:   v.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

// HandleUnreadCount handles GET /notifications/unread-count, the polling
// badge endpoint.
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// HandleMarkRead handles PATCH /notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	receipt, err := h.service.MarkRead(ctx, notificationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"notification_id": receipt.NotificationID.String(),
		"read_at":         receipt.ReadAt,
	})
}

type adminDispatchRequest struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	IsDirective bool   `json:"is_directive"`
	Global      bool   `json:"global"`
	UserID      string `json:"user_id,omitempty"`
	TenantID    string `json:"tenant_id,omitempty"`
	RoleName    string `json:"role,omitempty"`
}

// HandleAdminDispatch handles POST /admin/notifications: manual dispatch by
// director or admin identities, typically directives.
func (h *Handler) HandleAdminDispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	if err := requireAdmin(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[adminDispatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	scope := Scope{Global: req.Global, RoleName: req.RoleName}
	if req.UserID != "" {
		userID, err := id.ParseUserID(req.UserID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		scope.UserID = userID
	}
	if req.TenantID != "" {
		tenantID, err := id.ParseTenantID(req.TenantID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		scope.TenantID = tenantID
	}

	msg := Message{
		Title:       req.Title,
		Body:        req.Body,
		Severity:    Severity(req.Severity),
		Category:    Category(req.Category),
		IsDirective: req.IsDirective,
	}
	if msg.Category == "" {
		msg.Category = CategoryDirective
	}

	n, err := h.router.Dispatch(ctx, msg, scope)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": n.ID.String()})
}

// HandleSweep handles POST /admin/retention/sweep?dry_run=true.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := requireAdmin(ctx); err != nil {
		httputil.WriteError(w, err)
		return
	}

	dryRun := r.URL.Query().Get("dry_run") == "true"
	counts, err := h.sweeper.Sweep(ctx, dryRun)
	if err != nil {
		h.logger.ErrorContext(ctx, "on-demand sweep failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, counts)
}

func requireAdmin(ctx context.Context) error {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	switch actor.RoleName {
	case roles.Director, roles.Admin:
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "director or admin role required")
}
