package wiki

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/httputil"
	"nexus/pkg/requestcontext"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/wiki/guides", h.HandleCreate)
	r.Get("/wiki/guides", h.HandleList)
	r.Get("/wiki/guides/{id}", h.HandleGet)
	r.Post("/wiki/guides/{id}/publish", h.HandlePublish)
}

type guideResponse struct {
	ID          string     `json:"id"`
	TenantID    *string    `json:"tenant_id,omitempty"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	AuthorID    string     `json:"author_id"`
	Points      int        `json:"points"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func toResponse(g *Guide) guideResponse {
	resp := guideResponse{
		ID:          g.ID.String(),
		Title:       g.Title,
		Body:        g.Body,
		Status:      string(g.Status),
		AuthorID:    g.AuthorID.String(),
		Points:      g.Points,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
		PublishedAt: g.PublishedAt,
	}
	if !g.TenantID.IsNil() {
		v := g.TenantID.String()
		resp.TenantID = &v
	}
	return resp
}

type createRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Points int    `json:"points"`
	Global bool   `json:"global"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	g, err := h.service.Create(ctx, CreateParams{
		Title:  req.Title,
		Body:   req.Body,
		Points: req.Points,
		Global: req.Global,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(g))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	guides, err := h.service.ListVisible(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]guideResponse, 0, len(guides))
	for _, g := range guides {
		out = append(out, toResponse(g))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	guideID, err := id.ParseGuideID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	g, err := h.service.Get(r.Context(), guideID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(g))
}

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	guideID, err := id.ParseGuideID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	g, err := h.service.Publish(r.Context(), guideID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(g))
}
