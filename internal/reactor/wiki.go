package reactor

import (
	"context"
	"fmt"

	"nexus/internal/audit"
	"nexus/internal/lifecycle"
	"nexus/internal/notification"
	"nexus/internal/roles"
	"nexus/internal/wiki"
)

// WikiReactor announces guide activity. New drafts are announced everywhere
// so the knowledge base stays discoverable; publication notifies the
// technical roles of the guide's own site, or everyone for a global guide.
// Authors additionally get a personal confirmation when the publication
// awarded them recognition points.
type WikiReactor struct {
	notifier Notifier
}

func NewWikiReactor(notifier Notifier) *WikiReactor {
	return &WikiReactor{notifier: notifier}
}

func (r *WikiReactor) React(ctx context.Context, ev lifecycle.Event) error {
	g, ok := ev.Entity.(*wiki.Guide)
	if !ok {
		return nil
	}

	if ev.Action == audit.ActionCreate {
		msg := notification.Message{
			Title:    fmt.Sprintf("New guide drafted: %s", g.Title),
			Body:     "A new technical guide was added to the wiki.",
			Severity: notification.SeverityInfo,
			Category: notification.CategoryWiki,
		}
		return send(ctx, r.notifier, msg, g.TenantID, audience{global: true})
	}

	if transitioned(ev, "status", string(g.Status), string(wiki.StatusPublished)) {
		msg := notification.Message{
			Title:    fmt.Sprintf("Guide published: %s", g.Title),
			Body:     "A technical guide is now published and available.",
			Severity: notification.SeverityInfo,
			Category: notification.CategoryWiki,
		}
		aud := audience{global: g.IsGlobal()}
		if !g.IsGlobal() {
			aud.roles = []string{roles.Technician, roles.SystemsSupervisor}
		}
		err := send(ctx, r.notifier, msg, g.TenantID, aud)

		// The author only hears back when the publication earned them
		// recognition points; a zero-point guide stays silent.
		if g.Points > 0 {
			confirmation := notification.Message{
				Title: "Recognition points awarded",
				Body: fmt.Sprintf("Your guide %q was published and earned you %d recognition points. Check your profile for the updated total.",
					g.Title, g.Points),
				Severity:    notification.SeverityInfo,
				Category:    notification.CategoryWiki,
				IsDirective: true,
			}
			if sendErr := send(ctx, r.notifier, confirmation, g.TenantID, userAudience(g.AuthorID)); err == nil {
				err = sendErr
			}
		}
		return err
	}
	return nil
}
