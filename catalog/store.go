package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/princinho/catalogviewer/filters"
	"github.com/princinho/catalogviewer/models"
)

const LoadErrorMessage = "Error loading products. Please try again later."

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

// Status is a snapshot of the load lifecycle. Loading drives the loading
// indicator; Message replaces it after a failure.
type Status struct {
	Phase   Phase
	Loading bool
	Message string
}

func (s Status) Ready() bool  { return s.Phase == PhaseReady }
func (s Status) Failed() bool { return s.Phase == PhaseFailed }

type Fetcher interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// Store holds the full product list. It is written once by Load and is
// read-only afterwards.
type Store struct {
	log *zap.Logger

	mu       sync.RWMutex
	status   Status
	products []models.Product
	byID     map[int]int
	options  models.OptionSets

	once sync.Once
	done chan struct{}
}

func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log, done: make(chan struct{}), byID: map[int]int{}}
}

// Load performs the one catalog fetch. Subsequent calls are no-ops.
func (s *Store) Load(ctx context.Context, f Fetcher) {
	s.once.Do(func() {
		s.load(ctx, f)
	})
}

func (s *Store) load(ctx context.Context, f Fetcher) {
	s.setLoading(true)
	defer close(s.done)
	defer s.setLoading(false)

	products, err := f.FetchProducts(ctx)
	if err != nil {
		s.log.Error("error fetching products", zap.Error(err))
		s.mu.Lock()
		s.status.Phase = PhaseFailed
		s.status.Message = LoadErrorMessage
		s.mu.Unlock()
		return
	}

	byID := make(map[int]int, len(products))
	for i, p := range products {
		if _, dup := byID[p.Id]; !dup {
			byID[p.Id] = i
		}
	}
	options := filters.ComputeOptionSets(products)

	s.mu.Lock()
	s.products = products
	s.byID = byID
	s.options = options
	s.status.Phase = PhaseReady
	s.mu.Unlock()

	s.log.Info("catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("categories", len(options.Categories)),
		zap.Int("brands", len(options.Brands)),
	)
}

func (s *Store) setLoading(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Loading = on
	if on {
		s.status.Phase = PhaseLoading
	}
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Done is closed once the load has settled, successfully or not.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Products returns the full list. Callers must not mutate it.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *Store) Options() models.OptionSets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options
}

func (s *Store) Find(id int) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i], true
}
