// Package survey collects the "was this page helpful?" answers visitors give and sums them up for staff.
package survey

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

type Choice string

const (
	ChoiceYes Choice = "yes"
	ChoiceNo  Choice = "no"
)

type Response struct {
	ID        string    `json:"id"`
	Choice    Choice    `json:"choice"`
	Path      string    `json:"path"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type QueryFilter struct {
	Path string    `query:"path"`
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

// Match reports whether a response passes every set filter.
func (qf QueryFilter) Match(r Response) bool {
	if qf.Path != "" && r.Path != qf.Path {
		return false
	}
	if !qf.From.IsZero() && r.CreatedAt.Before(qf.From) {
		return false
	}
	if !qf.To.IsZero() && r.CreatedAt.After(qf.To) {
		return false
	}
	return true
}

// PathSummary sums up the responses given on one page.
type PathSummary struct {
	Path       string   `json:"path"`
	Yes        int      `json:"yes"`
	No         int      `json:"no"`
	Total      int      `json:"total"`
	Percentage float64  `json:"percentage"` // share of yes answers
	Messages   []string `json:"messages,omitempty"`
}

// PercentagesFor returns the share of yes votes as a percentage rounded to one decimal place.
func PercentagesFor(yes, no int) float64 {
	total := yes + no
	if total == 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(yes)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
	f, _ := pct.Float64()
	return f
}

// Summarise groups responses by path, most answered first.
func Summarise(responses []Response) []PathSummary {
	byPath := make(map[string]*PathSummary)
	for _, r := range responses {
		s, ok := byPath[r.Path]
		if !ok {
			s = &PathSummary{Path: r.Path}
			byPath[r.Path] = s
		}
		switch r.Choice {
		case ChoiceYes:
			s.Yes++
		case ChoiceNo:
			s.No++
		}
		if r.Message != "" {
			s.Messages = append(s.Messages, r.Message)
		}
	}

	out := make([]PathSummary, 0, len(byPath))
	for _, s := range byPath {
		s.Total = s.Yes + s.No
		s.Percentage = PercentagesFor(s.Yes, s.No)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Path < out[j].Path
	})
	return out
}

type (
	Repository interface {
		CreateResponse(ctx context.Context, r Response) (Response, error)
		QueryResponses(ctx context.Context, filter QueryFilter) ([]Response, error)
	}

	Service struct {
		repo      Repository
		validator *form.Validator
	}
)

func NewService(repo Repository, validator *form.Validator) *Service {
	return &Service{repo: repo, validator: validator}
}

var responseFields = []form.Field{
	{
		Name:  "choice",
		Label: core.Copy{En: "Did you find what you were looking for?", Cy: "A wnaethoch chi ddod o hyd i'r hyn yr oeddech yn chwilio amdano?"},
		Type:  fields.TypeRadio,
		Rules: "required",
		Options: []fields.Option{
			{Value: string(ChoiceYes), Label: core.Copy{En: "Yes", Cy: "Do"}},
			{Value: string(ChoiceNo), Label: core.Copy{En: "No", Cy: "Naddo"}},
		},
	},
	{
		Name:  "path",
		Label: core.Copy{En: "Page", Cy: "Tudalen"},
		Type:  fields.TypeText,
		Rules: "required,max=512",
	},
	{
		Name:  "message",
		Label: core.Copy{En: "Tell us more", Cy: "Dywedwch fwy wrthym"},
		Type:  fields.TypeTextarea,
		Rules: "omitempty,maxwords=500",
	},
}

// Submit validates and stores a response. Invalid answers are returned as a core.ValidationError.
func (svc *Service) Submit(ctx context.Context, values form.Data, l core.Locale) (Response, error) {
	res := svc.validator.ValidateFields(responseFields, values, l)
	if !res.IsValid() {
		return Response{}, res.Err()
	}

	r := Response{
		ID:        uuid.NewString(),
		Choice:    Choice(res.String("choice")),
		Path:      res.String("path"),
		Message:   res.String("message"),
		CreatedAt: time.Now().UTC(),
	}
	r, err := svc.repo.CreateResponse(ctx, r)
	if err != nil {
		return Response{}, errors.Wrap(err, "creating survey response")
	}
	return r, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Response, error) {
	return svc.repo.QueryResponses(ctx, filter)
}

// Summary sums up the responses matching the filter by path.
func (svc *Service) Summary(ctx context.Context, filter QueryFilter) ([]PathSummary, error) {
	responses, err := svc.repo.QueryResponses(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying survey responses")
	}
	return Summarise(responses), nil
}
