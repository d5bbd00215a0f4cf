// Package session keeps server-side visitor state (the materials basket, flash messages)
// behind a cookie holding only the session ID.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core/materials"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string           `json:"id"`
	Basket    materials.Basket `json:"basket"`
	Flashes   []string         `json:"flashes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"` // UTC
}

func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Basket:    make(materials.Basket),
		CreatedAt: time.Now().UTC(),
	}
}

func (s *Session) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
}

// PopFlashes returns the flash messages and forgets them.
func (s *Session) PopFlashes() []string {
	f := s.Flashes
	s.Flashes = nil
	return f
}

type Store interface {
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*Session, error)
	// Save stores the session, resetting its time to live.
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Load returns the session with the given ID, or a new one when there is none.
func Load(ctx context.Context, store Store, id string) (*Session, error) {
	if id == "" {
		return New(), nil
	}
	s, err := store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	if s.Basket == nil {
		s.Basket = make(materials.Basket)
	}
	return s, nil
}
