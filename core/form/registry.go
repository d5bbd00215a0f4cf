package form

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var ErrFormNotFound = errors.New("form not found")

// Registry holds the forms applicants can fill in, by ID.
type Registry struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

func NewRegistry() *Registry {
	return &Registry{forms: make(map[string]*Form)}
}

// Register seals the form and makes it available, failing if its definition is invalid.
func (r *Registry) Register(f *Form) error {
	if err := f.Seal(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forms[f.ID]; ok {
		return errors.Errorf("form %s already registered", f.ID)
	}
	r.forms[f.ID] = f
	return nil
}

func (r *Registry) Get(id string) (*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	return f, nil
}

// IDs returns the IDs of the registered forms, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.forms))
	for id := range r.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
