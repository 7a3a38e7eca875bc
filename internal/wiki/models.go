package wiki

import (
	"time"

	"nexus/internal/audit"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

// Status is the publication state of a guide.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) IsValid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Guide is a technical wiki article. Guides authored without a tenant
// (TenantID zero) are platform-wide reference material visible everywhere;
// tenant-scoped guides document site-specific procedures.
type Guide struct {
	ID          id.GuideID
	TenantID    id.TenantID // zero = global guide
	Title       string
	Body        string
	Status      Status
	AuthorID    id.UserID
	Points      int // recognition points awarded to the author on publication
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

func New(guideID id.GuideID, tenantID id.TenantID, authorID id.UserID, title, body string, points int, now time.Time) (*Guide, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "guide title cannot be empty")
	}
	if len(title) > 200 {
		return nil, dErrors.New(dErrors.CodeValidation, "guide title cannot exceed 200 characters")
	}
	if authorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "guide requires an author")
	}
	if points < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "guide recognition points cannot be negative")
	}
	return &Guide{
		ID:        guideID,
		TenantID:  tenantID,
		Title:     title,
		Body:      body,
		Status:    StatusDraft,
		AuthorID:  authorID,
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsGlobal reports whether the guide is platform-wide rather than
// tenant-scoped.
func (g *Guide) IsGlobal() bool { return g.TenantID.IsNil() }

// ApplyPublish moves a draft to published. Publishing an already-published
// guide is a no-op so accidental double submits never re-fire downstream
// notifications.
func (g *Guide) ApplyPublish(now time.Time) error {
	if g.Status == StatusPublished {
		return nil
	}
	g.Status = StatusPublished
	published := now
	g.PublishedAt = &published
	g.UpdatedAt = now
	return nil
}

func (g *Guide) AuditKind() audit.Kind { return audit.KindWikiGuide }
func (g *Guide) AuditEntityID() string { return g.ID.String() }
func (g *Guide) AuditSnapshot() audit.Snapshot {
	var tenantID any
	if !g.TenantID.IsNil() {
		tenantID = g.TenantID.String()
	}
	var publishedAt any
	if g.PublishedAt != nil {
		publishedAt = *g.PublishedAt
	}
	return audit.Capture(map[string]any{
		"title":        g.Title,
		"body":         g.Body,
		"status":       string(g.Status),
		"author_id":    g.AuthorID.String(),
		"points":       g.Points,
		"tenant_id":    tenantID,
		"published_at": publishedAt,
	})
}
