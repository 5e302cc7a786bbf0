package session

import (
	"errors"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/filters"
	"github.com/princinho/catalogviewer/models"
	"github.com/princinho/catalogviewer/render"
	"github.com/princinho/catalogviewer/utils"
)

var ErrProductNotFound = errors.New("product not found")

// AppState is everything a visitor can change. The full product list lives in
// the catalog store and is shared read-only.
type AppState struct {
	Filter      models.FilterState
	CurrentPage int
	Filtered    []models.Product
}

// View is one rendering of the visitor's state, replaced wholesale on the
// client.
type View struct {
	Ready      bool               `json:"ready"`
	Status     template.HTML      `json:"status"`
	Filters    template.HTML      `json:"filters"`
	Grid       template.HTML      `json:"grid"`
	Pagination template.HTML      `json:"pagination"`
	Page       filters.Pagination `json:"page"`
	Filter     models.FilterState `json:"filter"`
	Total      int                `json:"total"`
}

type Controller struct {
	store    *catalog.Store
	renderer *render.Renderer
	log      *zap.Logger

	mu    sync.Mutex
	state AppState
	view  View
	subs  map[chan View]struct{}

	search   *utils.Debouncer[string]
	lastSeen time.Time
	closed   bool
}

func NewController(store *catalog.Store, renderer *render.Renderer, debounce time.Duration, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		store:    store,
		renderer: renderer,
		log:      log,
		state:    AppState{CurrentPage: 1},
		subs:     make(map[chan View]struct{}),
		lastSeen: time.Now(),
	}
	c.search = utils.Debounce(debounce, c.applySearch)

	st := c.store.Status()
	settled := st.Ready() || st.Failed()

	c.mu.Lock()
	c.refilterLocked()
	c.mu.Unlock()

	if !settled {
		go c.awaitCatalog()
	}
	return c
}

// awaitCatalog re-renders once the initial fetch settles so visitors who
// arrived during loading receive the products (or the error).
func (c *Controller) awaitCatalog() {
	<-c.store.Done()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.refilterLocked()
}

// Restore replaces the filter state and page, e.g. from a request's query
// string, and re-renders.
func (c *Controller) Restore(state models.FilterState, page int) View {
	c.touch()
	c.search.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filter = state
	c.state.Filtered = filters.ApplyFilters(c.store.Products(), state)
	c.state.CurrentPage = filters.ClampPage(page, filters.PageCount(len(c.state.Filtered), models.ProductsPerPage))
	c.renderLocked()
	return c.view
}

// Search schedules filtering with the new term. Only the last term within
// the debounce window is applied.
func (c *Controller) Search(term string) {
	c.touch()
	c.search.Call(term)
}

func (c *Controller) applySearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Filter.SearchTerm = term
	c.refilterLocked()
}

// FlushSearch applies a pending search immediately.
func (c *Controller) FlushSearch() bool {
	return c.search.Flush()
}

func (c *Controller) SetCategory(category string) View {
	return c.updateFilter(func(f *models.FilterState) { f.Category = category })
}

func (c *Controller) SetBrand(brand string) View {
	return c.updateFilter(func(f *models.FilterState) { f.Brand = brand })
}

func (c *Controller) SetPriceBand(band models.PriceBand) View {
	return c.updateFilter(func(f *models.FilterState) { f.PriceBand = band })
}

// SyncSearch records term as the current search text, dropping any pending
// debounced search. It does not re-filter; the next filter change does.
func (c *Controller) SyncSearch(term string) {
	c.search.Stop()
	c.mu.Lock()
	c.state.Filter.SearchTerm = term
	c.mu.Unlock()
}

func (c *Controller) updateFilter(mutate func(*models.FilterState)) View {
	c.touch()
	c.mu.Lock()
	defer c.mu.Unlock()
	mutate(&c.state.Filter)
	c.refilterLocked()
	return c.view
}

// refilterLocked recomputes the filtered list from the full catalog and
// resets to the first page.
func (c *Controller) refilterLocked() {
	c.state.Filtered = filters.ApplyFilters(c.store.Products(), c.state.Filter)
	c.state.CurrentPage = 1
	c.renderLocked()
}

func (c *Controller) GoToPage(page int) View {
	c.touch()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CurrentPage = filters.ClampPage(page, c.pageCountLocked())
	c.renderLocked()
	return c.view
}

func (c *Controller) NextPage() View {
	c.mu.Lock()
	page := c.state.CurrentPage + 1
	c.mu.Unlock()
	return c.GoToPage(page)
}

func (c *Controller) PrevPage() View {
	c.mu.Lock()
	page := c.state.CurrentPage - 1
	c.mu.Unlock()
	return c.GoToPage(page)
}

func (c *Controller) pageCountLocked() int {
	return filters.PageCount(len(c.state.Filtered), models.ProductsPerPage)
}

// QuickView renders the details modal for a product of the full catalog.
func (c *Controller) QuickView(id int) (template.HTML, error) {
	c.touch()
	p, ok := c.store.Find(id)
	if !ok {
		return "", ErrProductNotFound
	}
	return c.renderer.RenderDetails(p)
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) renderLocked() {
	status := c.store.Status()
	pageCount := c.pageCountLocked()
	pagination := filters.NewPagination(c.state.CurrentPage, pageCount)

	v := View{
		Ready:  status.Ready(),
		Page:   pagination,
		Filter: c.state.Filter,
		Total:  len(c.state.Filtered),
	}

	var err error
	if v.Status, err = c.renderer.RenderStatus(status); err != nil {
		c.log.Error("render status", zap.Error(err))
	}
	if v.Filters, err = c.renderer.RenderFilters(c.store.Options(), c.state.Filter, status.Ready()); err != nil {
		c.log.Error("render filters", zap.Error(err))
	}
	if status.Ready() {
		page := filters.Paginate(c.state.Filtered, models.ProductsPerPage, c.state.CurrentPage)
		if v.Grid, err = c.renderer.RenderList(page); err != nil {
			c.log.Error("render products", zap.Error(err))
		}
		if v.Pagination, err = c.renderer.RenderPagination(pagination, c.state.Filter); err != nil {
			c.log.Error("render pagination", zap.Error(err))
		}
	}

	c.view = v
	c.publishLocked(v)
}

// Subscribe returns a channel receiving every new view. Slow readers only
// ever see the latest one. The channel is closed when the controller is. The
// returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	ch <- c.view
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) publishLocked(v View) {
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Controller) hasSubscribers() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs) > 0
}

func (c *Controller) Close() {
	c.search.Stop()
	c.mu.Lock()
	c.closed = true
	for ch := range c.subs {
		close(ch)
	}
	c.subs = make(map[chan View]struct{})
	c.mu.Unlock()
}
