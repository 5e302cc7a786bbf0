package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/render"
)

// Registry keeps one Controller per visitor id. Controllers idle for longer
// than ttl are dropped on the next sweep.
type Registry struct {
	store    *catalog.Store
	renderer *render.Renderer
	debounce time.Duration
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(store *catalog.Store, renderer *render.Renderer, debounce, ttl time.Duration, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		store:       store,
		renderer:    renderer,
		debounce:    debounce,
		ttl:         ttl,
		log:         log,
		now:         time.Now,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the controller for id, creating a fresh one (with a new id)
// when id is unknown or malformed. The returned id is the one to persist.
func (r *Registry) Get(id string) (string, *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if c, ok := r.controllers[id]; ok {
			return id, c
		}
	} else {
		id = uuid.NewString()
	}

	c := NewController(r.store, r.renderer, r.debounce, r.log.With(zap.String("session", id)))
	r.controllers[id] = c
	r.log.Debug("session created", zap.String("session", id), zap.Int("active", len(r.controllers)))
	return id, c
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep closes and forgets controllers idle for longer than ttl that have no
// open event stream.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Controller
	for id, c := range r.controllers {
		// an open event stream keeps the session alive
		if c.hasSubscribers() {
			continue
		}
		if c.idleSince().Before(cutoff) {
			expired = append(expired, c)
			delete(r.controllers, id)
		}
	}
	r.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		r.log.Debug("sessions expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps periodically until stop is closed.
func (r *Registry) Run(stop <-chan struct{}) {
	if r.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-stop:
			return
		}
	}
}
