// Package feedback collects free text comments on parts of the site.
package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

type Feedback struct {
	ID          string    `json:"id"`
	Description string    `json:"description"` // page or feature commented on
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
}

type QueryFilter struct {
	Description string `query:"description"`
}

func (qf QueryFilter) Match(fb Feedback) bool {
	return qf.Description == "" || fb.Description == qf.Description
}

type (
	Repository interface {
		CreateFeedback(ctx context.Context, fb Feedback) (Feedback, error)
		// QueryFeedback returns the matching feedback, newest first.
		QueryFeedback(ctx context.Context, filter QueryFilter) ([]Feedback, error)
	}

	Service struct {
		repo      Repository
		validator *form.Validator
	}
)

func NewService(repo Repository, validator *form.Validator) *Service {
	return &Service{repo: repo, validator: validator}
}

var feedbackFields = []form.Field{
	{
		Name:  "description",
		Label: core.Copy{En: "What is your feedback about?", Cy: "Am beth mae eich adborth?"},
		Type:  fields.TypeText,
		Rules: "required,max=255",
	},
	{
		Name:  "message",
		Label: core.Copy{En: "Your feedback", Cy: "Eich adborth"},
		Type:  fields.TypeTextarea,
		Rules: "required,maxwords=1000",
		Messages: map[string]core.Copy{
			"required": {En: "Enter your feedback", Cy: "Rhowch eich adborth"},
		},
	},
}

// Submit validates and stores feedback. Invalid answers are returned as a core.ValidationError.
func (svc *Service) Submit(ctx context.Context, values form.Data, l core.Locale) (Feedback, error) {
	res := svc.validator.ValidateFields(feedbackFields, values, l)
	if !res.IsValid() {
		return Feedback{}, res.Err()
	}

	fb, err := svc.repo.CreateFeedback(ctx, Feedback{
		ID:          uuid.NewString(),
		Description: res.String("description"),
		Message:     res.String("message"),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Feedback{}, errors.Wrap(err, "creating feedback")
	}
	return fb, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Feedback, error) {
	return svc.repo.QueryFeedback(ctx, filter)
}
