package application

import (
	"time"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/form"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
)

// Application is the answers of an applicant to one of the funding forms.
type Application struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	FormID      string      `json:"formId"`
	Locale      core.Locale `json:"locale"`
	Data        form.Data   `json:"applicationData"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"` // UTC
	UpdatedAt   time.Time   `json:"updatedAt"` // UTC
	ExpiresAt   time.Time   `json:"expiresAt"` // UTC
	SubmittedAt time.Time   `json:"submittedAt,omitempty"`
}

func (a Application) IsComplete() bool { return a.Status == StatusComplete }

// IsExpired reports whether a pending application has reached its expiry date.
func (a Application) IsExpired(now time.Time) bool {
	return !a.IsComplete() && !now.Before(a.ExpiresAt)
}

// EmailType identifies the expiry reminder an applicant is sent.
type EmailType string

const (
	EmailOneMonth EmailType = "ONE_MONTH"
	EmailOneWeek  EmailType = "ONE_WEEK"
	EmailOneDay   EmailType = "ONE_DAY"
)

// ReminderPeriod is how long before expiry a reminder is sent.
type ReminderPeriod struct {
	Type   EmailType
	Before time.Duration
}

var DefaultReminderPeriods = []ReminderPeriod{
	{Type: EmailOneMonth, Before: 30 * 24 * time.Hour},
	{Type: EmailOneWeek, Before: 7 * 24 * time.Hour},
	{Type: EmailOneDay, Before: 24 * time.Hour},
}

// QueuedEmail is an entry of the expiry queue of an application.
type QueuedEmail struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	Type          EmailType `json:"emailType"`
	SendAt        time.Time `json:"sendAt"`
	SentAt        time.Time `json:"sentAt,omitempty"`
}

func (qe QueuedEmail) IsSent() bool { return !qe.SentAt.IsZero() }

// DueEmail is a queued email along with the application it reminds about.
type DueEmail struct {
	QueuedEmail
	Application Application
}

type QueryFilter struct {
	FormID string `query:"formId"`
	Status Status `query:"status"`
	UserID string `query:"userId"`
}

// Summary is what an applicant answered in a section, formatted for people to read.
type Summary struct {
	Slug   string        `json:"slug"`
	Title  string        `json:"title"`
	Fields []SummaryLine `json:"fields"`
}

type SummaryLine struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}
