package sqlxrepos

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/feedback"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/core/survey"
)

type surveyRow struct {
	ID        string      `db:"id"`
	Choice    string      `db:"choice"`
	Path      string      `db:"path"`
	Message   null.String `db:"message"`
	CreatedAt time.Time   `db:"created_at"`
}

type surveyRepository struct {
	db *sqlx.DB
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(db *sqlx.DB) survey.Repository {
	return &surveyRepository{db: db}
}

func (repo *surveyRepository) CreateResponse(ctx context.Context, r survey.Response) (survey.Response, error) {
	row := surveyRow{
		ID:        r.ID,
		Choice:    string(r.Choice),
		Path:      r.Path,
		Message:   null.NewString(r.Message, r.Message != ""),
		CreatedAt: r.CreatedAt,
	}
	q := `INSERT INTO survey_response (id, choice, path, message, created_at)
		VALUES (:id, :choice, :path, :message, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return survey.Response{}, errors.Wrap(err, "inserting survey response")
	}
	return r, nil
}

func (repo *surveyRepository) QueryResponses(ctx context.Context, filter survey.QueryFilter) ([]survey.Response, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Path != "" {
		conds = append(conds, "path = "+arg(filter.Path))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "created_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "created_at <= "+arg(filter.To))
	}

	q := `SELECT id, choice, path, message, created_at FROM survey_response`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at`

	var rows []surveyRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying survey responses")
	}
	out := make([]survey.Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, survey.Response{
			ID:        r.ID,
			Choice:    survey.Choice(r.Choice),
			Path:      r.Path,
			Message:   r.Message.String,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return out, nil
}

type feedbackRow struct {
	ID          string    `db:"id"`
	Description string    `db:"description"`
	Message     string    `db:"message"`
	CreatedAt   time.Time `db:"created_at"`
}

type feedbackRepository struct {
	db *sqlx.DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *sqlx.DB) feedback.Repository {
	return &feedbackRepository{db: db}
}

func (repo *feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	q := `INSERT INTO feedback (id, description, message, created_at)
		VALUES (:id, :description, :message, :created_at)`
	row := feedbackRow{ID: fb.ID, Description: fb.Description, Message: fb.Message, CreatedAt: fb.CreatedAt}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "inserting feedback")
	}
	return fb, nil
}

func (repo *feedbackRepository) QueryFeedback(ctx context.Context, filter feedback.QueryFilter) ([]feedback.Feedback, error) {
	q := `SELECT id, description, message, created_at FROM feedback`
	var args []interface{}
	if filter.Description != "" {
		q += ` WHERE description = $1`
		args = append(args, filter.Description)
	}
	q += ` ORDER BY created_at DESC`

	var rows []feedbackRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying feedback")
	}
	out := make([]feedback.Feedback, 0, len(rows))
	for _, r := range rows {
		out = append(out, feedback.Feedback{
			ID:          r.ID,
			Description: r.Description,
			Message:     r.Message,
			CreatedAt:   r.CreatedAt.UTC(),
		})
	}
	return out, nil
}

type orderRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Email       string         `db:"email"`
	Phone       string         `db:"phone"`
	Address     types.JSONText `db:"address"`
	GrantNumber null.String    `db:"grant_number"`
	Items       types.JSONText `db:"items"`
	Locale      string         `db:"locale"`
	CreatedAt   time.Time      `db:"created_at"`
}

type orderRepository struct {
	db *sqlx.DB
}

var _ materials.Repository = (*orderRepository)(nil) // interface compliance check

func NewOrderRepository(db *sqlx.DB) materials.Repository {
	return &orderRepository{db: db}
}

func (repo *orderRepository) CreateOrder(ctx context.Context, order materials.Order) (materials.Order, error) {
	addr, err := json.Marshal(order.Address)
	if err != nil {
		return materials.Order{}, errors.Wrap(err, "encoding order address")
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return materials.Order{}, errors.Wrap(err, "encoding order items")
	}
	row := orderRow{
		ID:          order.ID,
		Name:        order.Name,
		Email:       order.Email,
		Phone:       order.Phone,
		Address:     addr,
		GrantNumber: null.NewString(order.GrantNumber, order.GrantNumber != ""),
		Items:       items,
		Locale:      string(order.Locale),
		CreatedAt:   order.CreatedAt,
	}
	q := `INSERT INTO material_order (id, name, email, phone, address, grant_number, items, locale, created_at)
		VALUES (:id, :name, :email, :phone, :address, :grant_number, :items, :locale, :created_at)`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return materials.Order{}, errors.Wrap(err, "inserting order")
	}
	return order, nil
}

func (repo *orderRepository) QueryOrders(ctx context.Context) ([]materials.Order, error) {
	var rows []orderRow
	q := `SELECT id, name, email, phone, address, grant_number, items, locale, created_at
		FROM material_order ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying orders")
	}

	out := make([]materials.Order, 0, len(rows))
	for _, r := range rows {
		var (
			addr  fields.Address
			items []materials.OrderItem
		)
		if err := r.Address.Unmarshal(&addr); err != nil {
			return nil, errors.Wrap(err, "decoding order address")
		}
		if err := r.Items.Unmarshal(&items); err != nil {
			return nil, errors.Wrap(err, "decoding order items")
		}
		out = append(out, materials.Order{
			ID:          r.ID,
			Name:        r.Name,
			Email:       r.Email,
			Phone:       r.Phone,
			Address:     addr,
			GrantNumber: r.GrantNumber.String,
			Items:       items,
			Locale:      core.ParseLocale(r.Locale),
			CreatedAt:   r.CreatedAt.UTC(),
		})
	}
	return out, nil
}
