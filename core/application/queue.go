package application

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
)

// BuildExpiryQueue returns the reminders to send before the application expires, one per period,
// ordered by send time. Reminders whose send time is not after now are skipped.
func BuildExpiryQueue(app Application, periods []ReminderPeriod, now time.Time) ([]QueuedEmail, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(app.ID, "app.ID"),
		vala.Not(vala.Equals(app.ExpiresAt, time.Time{}, "app.ExpiresAt")),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "application.BuildExpiryQueue")
	}

	queue := make([]QueuedEmail, 0, len(periods))
	for _, p := range periods {
		sendAt := app.ExpiresAt.Add(-p.Before)
		if !sendAt.After(now) {
			continue
		}
		queue = append(queue, QueuedEmail{
			ID:            uuid.NewString(),
			ApplicationID: app.ID,
			Type:          p.Type,
			SendAt:        sendAt,
		})
	}
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].SendAt.Before(queue[j].SendAt) })
	return queue, nil
}
