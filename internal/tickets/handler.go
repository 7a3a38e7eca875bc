package tickets

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
	r.Post("/tickets", h.HandleCreate)
	r.Get("/tickets/{id}", h.HandleGet)
	r.Patch("/tickets/{id}/status", h.HandleUpdateStatus)
	r.Patch("/tickets/{id}/assignee", h.HandleAssign)
	r.Post("/tickets/{id}/close", h.HandleClose)
	r.Post("/tickets/{id}/reopen", h.HandleReopen)
}

type ticketResponse struct {
	ID          string     `json:"id"`
	TenantID    string     `json:"tenant_id"`
	Folio       string     `json:"folio"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	MachineCode string     `json:"machine_code,omitempty"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	ReporterID  string     `json:"reporter_id"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	ClosureNote string     `json:"closure_note,omitempty"`
	ReopenCount int        `json:"reopen_count"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toResponse(t *Ticket) ticketResponse {
	resp := ticketResponse{
		ID:          t.ID.String(),
		TenantID:    t.TenantID.String(),
		Folio:       t.Folio,
		Title:       t.Title,
		Description: t.Description,
		MachineCode: t.MachineCode,
		Category:    string(t.Category),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		ReporterID:  t.ReporterID.String(),
		ClosureNote: t.ClosureNote,
		ReopenCount: t.ReopenCount,
		ClosedAt:    t.ClosedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		v := t.AssigneeID.String()
		resp.AssigneeID = &v
	}
	return resp
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MachineCode string `json:"machine_code"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	t, err := h.service.Create(ctx, CreateParams{
		Title:       req.Title,
		Description: req.Description,
		MachineCode: req.MachineCode,
		Category:    Category(req.Category),
		Priority:    Priority(req.Priority),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(t))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ticketID, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Get(r.Context(), ticketID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticketID, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[statusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	t, err := h.service.UpdateStatus(ctx, ticketID, Status(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}

type closeRequest struct {
	ClosureNote string `json:"closure_note"`
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticketID, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[closeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	t, err := h.service.Close(ctx, ticketID, req.ClosureNote)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	ticketID, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	t, err := h.service.Reopen(r.Context(), ticketID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}

type assignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticketID, err := id.ParseTicketID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[assignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	var assignee *id.UserID
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		userID, err := id.ParseUserID(*req.AssigneeID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		assignee = &userID
	}

	t, err := h.service.Assign(ctx, ticketID, assignee)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(t))
}
