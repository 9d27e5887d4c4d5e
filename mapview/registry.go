package mapview

import (
	"context"
	"errors"
	"georeport/services"
	"sync"

	"github.com/google/uuid"
)

var ErrViewNotFound = errors.New("view not found")

// Registry tracks open views. Views outlive the request that opened them, so
// their refreshers run on the registry's context.
type Registry struct {
	ctx      context.Context
	store    services.ReportStore
	resolver *services.Resolver
	notifier services.Notifier
	opts     Options

	mu    sync.Mutex
	views map[string]*View
}

func NewRegistry(ctx context.Context, store services.ReportStore, resolver *services.Resolver, notifier services.Notifier, opts Options) *Registry {
	return &Registry{
		ctx:      ctx,
		store:    store,
		resolver: resolver,
		notifier: notifier,
		opts:     opts,
		views:    make(map[string]*View),
	}
}

func (r *Registry) Open(state services.FilterState) (*View, error) {
	v := NewView(uuid.NewString(), r.store, r.resolver, r.notifier, state, r.opts)
	if err := v.Open(r.ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.views[v.ID] = v
	r.mu.Unlock()
	return v, nil
}

func (r *Registry) Get(id string) (*View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	return v, nil
}

// Close tears one view down and forgets it.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if !ok {
		return ErrViewNotFound
	}
	v.Close()
	return nil
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
