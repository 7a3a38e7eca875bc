package incidences

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
	r.Post("/incidences", h.HandleCreate)
	r.Get("/incidences/{id}", h.HandleGet)
	r.Post("/incidences/{id}/end", h.HandleEnd)
}

type incidenceResponse struct {
	ID               string     `json:"id"`
	TenantID         string     `json:"tenant_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Severity         string     `json:"severity"`
	AffectsOperation bool       `json:"affects_operation"`
	StartedAt        time.Time  `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toResponse(i *Incidence) incidenceResponse {
	return incidenceResponse{
		ID:               i.ID.String(),
		TenantID:         i.TenantID.String(),
		Title:            i.Title,
		Description:      i.Description,
		Severity:         string(i.Severity),
		AffectsOperation: i.AffectsOperation,
		StartedAt:        i.StartedAt,
		EndedAt:          i.EndedAt,
		CreatedAt:        i.CreatedAt,
	}
}

type createRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Severity         string `json:"severity"`
	AffectsOperation bool   `json:"affects_operation"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	i, err := h.service.Create(ctx, CreateParams{
		Title:            req.Title,
		Description:      req.Description,
		Severity:         Severity(req.Severity),
		AffectsOperation: req.AffectsOperation,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(i))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	incidenceID, err := id.ParseIncidenceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	i, err := h.service.Get(r.Context(), incidenceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(i))
}

func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	incidenceID, err := id.ParseIncidenceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	i, err := h.service.End(r.Context(), incidenceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(i))
}
