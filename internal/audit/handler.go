package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/platform/httputil"
	"nexus/pkg/requestcontext"
)

// Handler exposes the audit query surface.
type Handler struct {
	recorder *Recorder
	logger   *slog.Logger
}

func NewHandler(recorder *Recorder, logger *slog.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/records", h.HandleList)
}

type recordResponse struct {
	ID         string                 `json:"id"`
	EntityKind string                 `json:"entity_kind"`
	EntityID   string                 `json:"entity_id"`
	Action     string                 `json:"action"`
	ActorID    string                 `json:"actor_id,omitempty"`
	ActorName  string                 `json:"actor_name,omitempty"`
	TenantID   string                 `json:"tenant_id,omitempty"`
	Changes    map[string]FieldChange `json:"changes"`
	RequestID  string                 `json:"request_id,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// HandleList handles GET /audit/records. Tenant actors only see their own
// tenant's trail; platform operators (no tenant claim) see everything.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	filter := Filter{
		EntityKind: Kind(r.URL.Query().Get("entity_kind")),
		EntityID:   r.URL.Query().Get("entity_id"),
		TenantID:   requestcontext.Tenant(ctx),
		Limit:      100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 1000"))
			return
		}
		filter.Limit = limit
	}
	if raw := r.URL.Query().Get("actor_id"); raw != "" {
		actorID, err := id.ParseUserID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.ActorID = actorID
	}

	records, err := h.recorder.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit list failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit records"))
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		resp := recordResponse{
			ID:         rec.ID.String(),
			EntityKind: string(rec.EntityKind),
			EntityID:   rec.EntityID,
			Action:     string(rec.Action),
			ActorName:  rec.ActorName,
			Changes:    rec.Changes,
			RequestID:  rec.RequestID,
			CreatedAt:  rec.CreatedAt,
		}
		if !rec.ActorID.IsNil() {
			resp.ActorID = rec.ActorID.String()
		}
		if !rec.TenantID.IsNil() {
			resp.TenantID = rec.TenantID.String()
		}
		out = append(out, resp)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": out})
}
