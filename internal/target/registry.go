package target

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"fileflow/internal/domain"
)

// Handler persists validated records for one target type and answers
// duplicate lookups against the rows already stored for it. Implementations
// are registered by name and resolved from the reader configuration's
// targetType at job time.
type Handler interface {
	Name() string
	Persist(ctx context.Context, rules []domain.FieldRule, validated domain.Record) error
	Exists(ctx context.Context, rules []domain.FieldRule, validated domain.Record, duplicateFields []string) (bool, error)
}

// Registry maps target type names to persistence handlers. Names are
// case-insensitive. Registration happens once during startup, after which
// the registry is read-only.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	key := strings.ToUpper(h.Name())
	if key == "" {
		return fmt.Errorf("target handler has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[key]; ok {
		return fmt.Errorf("target handler already registered: %s", h.Name())
	}
	r.handlers[key] = h
	return nil
}

func (r *Registry) Resolve(targetType string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[strings.ToUpper(targetType)]
	if !ok {
		return nil, fmt.Errorf("no handler registered for target type: %s", targetType)
	}
	return h, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		names = append(names, h.Name())
	}
	sort.Strings(names)
	return names
}
