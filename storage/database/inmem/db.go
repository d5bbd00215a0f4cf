// Package inmemdb stores everything in memory. It backs the API in debug mode and the tests.
package inmemdb

import (
	"sync"

	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/feedback"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/core/survey"
	"github.com/biglotteryfund/funding/core/user"
)

type (
	DB struct {
		user        *userTable
		application *applicationTable
		survey      *surveyTable
		feedback    *feedbackTable
		order       *orderTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	applicationTable struct {
		sync.RWMutex
		table   map[string]*application.Application
		deleted map[string]bool
		emails  map[string]*application.QueuedEmail
	}

	surveyTable struct {
		sync.RWMutex
		rows []survey.Response
	}

	feedbackTable struct {
		sync.RWMutex
		rows []feedback.Feedback
	}

	orderTable struct {
		sync.RWMutex
		rows []materials.Order
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		application: &applicationTable{
			table:   make(map[string]*application.Application),
			deleted: make(map[string]bool),
			emails:  make(map[string]*application.QueuedEmail),
		},
		survey:   new(surveyTable),
		feedback: new(feedbackTable),
		order:    new(orderTable),
	}
}
