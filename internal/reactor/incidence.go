package reactor

import (
	"context"
	"fmt"

	"nexus/internal/audit"
	"nexus/internal/incidences"
	"nexus/internal/lifecycle"
	"nexus/internal/notification"
	"nexus/internal/roles"
)

// IncidenceReactor escalates infrastructure outages. High-impact incidences
// (high/critical severity, or anything affecting gaming operations) go out
// urgent to management; the rest alert the systems supervisors. Resolution
// informs the escalation audience.
type IncidenceReactor struct {
	notifier Notifier
}

func NewIncidenceReactor(notifier Notifier) *IncidenceReactor {
	return &IncidenceReactor{notifier: notifier}
}

func (r *IncidenceReactor) React(ctx context.Context, ev lifecycle.Event) error {
	inc, ok := ev.Entity.(*incidences.Incidence)
	if !ok {
		return nil
	}

	if ev.Action == audit.ActionCreate {
		msg := notification.Message{
			Title:    fmt.Sprintf("Infrastructure incidence: %s", inc.Title),
			Body:     fmt.Sprintf("Severity %s. %s", inc.Severity, inc.Description),
			Severity: notification.SeverityAlert,
			Category: notification.CategoryInfrastructure,
		}
		aud := roleAudience(roles.SystemsSupervisor)
		if inc.HighImpact() {
			msg.Severity = notification.SeverityUrgent
			aud = roleAudience(roles.SystemsSupervisor, roles.Management)
		}
		return send(ctx, r.notifier, msg, inc.TenantID, aud)
	}

	// The resolution edge is ended_at going from unset to set; repeat saves
	// of an already-ended incidence stay silent.
	if ev.Action == audit.ActionUpdate && inc.EndedAt != nil && ev.Before != nil {
		if _, wasEnded := beforeValue(ev.Before, "ended_at"); !wasEnded {
			msg := notification.Message{
				Title:    fmt.Sprintf("Incidence resolved: %s", inc.Title),
				Body:     "The infrastructure incidence has ended.",
				Severity: notification.SeverityInfo,
				Category: notification.CategoryInfrastructure,
			}
			return send(ctx, r.notifier, msg, inc.TenantID,
				roleAudience(roles.SystemsSupervisor, roles.Management))
		}
	}
	return nil
}
