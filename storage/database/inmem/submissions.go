package inmemdb

import (
	"context"

	"github.com/biglotteryfund/funding/core/feedback"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/core/survey"
)

type surveyRepository struct {
	db *surveyTable
}

var _ survey.Repository = (*surveyRepository)(nil) // interface compliance check

func NewSurveyRepository(db *DB) survey.Repository {
	return &surveyRepository{db: db.survey}
}

func (repo *surveyRepository) CreateResponse(_ context.Context, r survey.Response) (survey.Response, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows = append(repo.db.rows, r)
	return r, nil
}

func (repo *surveyRepository) QueryResponses(_ context.Context, filter survey.QueryFilter) ([]survey.Response, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []survey.Response
	for _, r := range repo.db.rows {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

type feedbackRepository struct {
	db *feedbackTable
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *DB) feedback.Repository {
	return &feedbackRepository{db: db.feedback}
}

func (repo *feedbackRepository) CreateFeedback(_ context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows = append(repo.db.rows, fb)
	return fb, nil
}

func (repo *feedbackRepository) QueryFeedback(_ context.Context, filter feedback.QueryFilter) ([]feedback.Feedback, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []feedback.Feedback
	for i := len(repo.db.rows) - 1; i >= 0; i-- {
		if fb := repo.db.rows[i]; filter.Match(fb) {
			out = append(out, fb)
		}
	}
	return out, nil
}

type orderRepository struct {
	db *orderTable
}

var _ materials.Repository = (*orderRepository)(nil) // interface compliance check

func NewOrderRepository(db *DB) materials.Repository {
	return &orderRepository{db: db.order}
}

func (repo *orderRepository) CreateOrder(_ context.Context, order materials.Order) (materials.Order, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows = append(repo.db.rows, order)
	return order, nil
}

func (repo *orderRepository) QueryOrders(_ context.Context) ([]materials.Order, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]materials.Order, 0, len(repo.db.rows))
	for i := len(repo.db.rows) - 1; i >= 0; i-- {
		out = append(out, repo.db.rows[i])
	}
	return out, nil
}
