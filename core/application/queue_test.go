package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExpiryQueue(t *testing.T) {
	expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	app := Application{ID: "app-1", ExpiresAt: expires}

	tests := []struct {
		name  string
		now   time.Time
		types []EmailType
	}{
		{name: "all reminders", now: expires.AddDate(0, -3, 0), types: []EmailType{EmailOneMonth, EmailOneWeek, EmailOneDay}},
		{name: "month reminder passed", now: expires.Add(-10 * 24 * time.Hour), types: []EmailType{EmailOneWeek, EmailOneDay}},
		{name: "send time equal to now is skipped", now: expires.Add(-24 * time.Hour), types: []EmailType{}},
		{name: "already expired", now: expires.Add(time.Hour), types: []EmailType{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			queue, err := BuildExpiryQueue(app, DefaultReminderPeriods, tc.now)
			require.NoError(t, err)

			types := make([]EmailType, 0, len(queue))
			for _, qe := range queue {
				types = append(types, qe.Type)
				assert.Equal(t, app.ID, qe.ApplicationID)
				assert.NotEmpty(t, qe.ID)
				assert.False(t, qe.IsSent())
				assert.True(t, qe.SendAt.After(tc.now))
			}
			assert.Equal(t, tc.types, types)
		})
	}

	t.Run("ordered by send time", func(t *testing.T) {
		periods := []ReminderPeriod{
			{Type: EmailOneDay, Before: 24 * time.Hour},
			{Type: EmailOneMonth, Before: 30 * 24 * time.Hour},
		}
		queue, err := BuildExpiryQueue(app, periods, expires.AddDate(0, -2, 0))
		require.NoError(t, err)
		require.Len(t, queue, 2)
		assert.Equal(t, EmailOneMonth, queue[0].Type)
		assert.Equal(t, expires.Add(-30*24*time.Hour), queue[0].SendAt)
	})

	t.Run("application without expiry", func(t *testing.T) {
		_, err := BuildExpiryQueue(Application{ID: "app-2"}, DefaultReminderPeriods, time.Now())
		assert.Error(t, err)
	})
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		app  Application
		want bool
	}{
		{name: "pending before expiry", app: Application{Status: StatusPending, ExpiresAt: now.Add(time.Second)}},
		{name: "pending at expiry", app: Application{Status: StatusPending, ExpiresAt: now}, want: true},
		{name: "complete after expiry", app: Application{Status: StatusComplete, ExpiresAt: now.Add(-time.Hour)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.app.IsExpired(now))
		})
	}
}
