package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/filters"
	"github.com/princinho/catalogviewer/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Renderer struct {
	tmpl        *template.Template
	placeholder string
}

func New(placeholderImage string) (*Renderer, error) {
	funcMap := template.FuncMap{
		"categoryLabel": filters.CategoryLabel,
		"priceLabel":    func(b models.PriceBand) string { return b.Label() },
	}
	tmpl, err := template.New("_root").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, placeholder: placeholderImage}, nil
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// images falls back to the thumbnail, then to the placeholder image, so the
// gallery always has a primary entry.
func (r *Renderer) images(p models.Product) []string {
	out := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img != "" {
			out = append(out, img)
		}
	}
	if len(out) == 0 && p.Thumbnail != "" {
		out = append(out, p.Thumbnail)
	}
	if len(out) == 0 {
		out = append(out, r.placeholder)
	}
	return out
}

type cardView struct {
	ID          int
	Title       string
	Description string
	Brand       string
	Image       string
	Stars       []bool
	ReviewCount int
	Price       priceView
	LowStock    bool
}

// RenderList draws one card per product, or the empty-result placeholder.
func (r *Renderer) RenderList(products []models.Product) (template.HTML, error) {
	cards := make([]cardView, 0, len(products))
	for _, p := range products {
		cards = append(cards, cardView{
			ID:          p.Id,
			Title:       p.Title,
			Description: p.Description,
			Brand:       p.Brand,
			Image:       r.images(p)[0],
			Stars:       starSlots(starCount(p.AverageRating())),
			ReviewCount: len(p.Reviews),
			Price:       newPriceView(p),
			LowStock:    p.IsLowStock(),
		})
	}
	return r.execute("grid", cards)
}

type reviewView struct {
	Name    string
	Stars   []bool
	Date    string
	Comment string
}

type detailsView struct {
	Title       string
	Description string
	Brand       string
	Category    string
	Primary     string
	Images      []string
	Stars       []bool
	RatingLabel string
	ReviewCount int
	Price       priceView
	Stock       int
	StockLow    bool
	Sku         string
	Shipping    string
	Warranty    string
	Returns     string
	Reviews     []reviewView
}

func (r *Renderer) RenderDetails(p models.Product) (template.HTML, error) {
	avg := p.AverageRating()
	images := r.images(p)

	reviews := make([]reviewView, 0, len(p.Reviews))
	for _, rv := range p.Reviews {
		reviews = append(reviews, reviewView{
			Name:    rv.ReviewerName,
			Stars:   starSlots(rv.Rating),
			Date:    formatReviewDate(rv.Date),
			Comment: rv.Comment,
		})
	}

	return r.execute("details", detailsView{
		Title:       p.Title,
		Description: p.Description,
		Brand:       p.Brand,
		Category:    p.Category,
		Primary:     images[0],
		Images:      images,
		Stars:       starSlots(starCount(avg)),
		RatingLabel: strconv.FormatFloat(avg, 'f', 1, 64),
		ReviewCount: len(p.Reviews),
		Price:       newPriceView(p),
		Stock:       p.Stock,
		StockLow:    p.Stock < 10,
		Sku:         orDefault(p.Sku, DefaultSku),
		Shipping:    orDefault(p.ShippingInformation, DefaultShipping),
		Warranty:    orDefault(p.WarrantyInformation, DefaultWarranty),
		Returns:     orDefault(p.ReturnPolicy, DefaultReturns),
		Reviews:     reviews,
	})
}

type pageLink struct {
	Number  int
	Href    string
	Current bool
}

type paginationView struct {
	Visible      bool
	PrevHref     string
	NextHref     string
	Prev         int
	Next         int
	PrevDisabled bool
	NextDisabled bool
	Pages        []pageLink
}

// PageQuery encodes the filter state and page as the query string understood
// by the catalog page.
func PageQuery(state models.FilterState, page int) string {
	q := url.Values{}
	if state.SearchTerm != "" {
		q.Set("q", state.SearchTerm)
	}
	if state.Category != "" {
		q.Set("category", state.Category)
	}
	if state.Brand != "" {
		q.Set("brand", state.Brand)
	}
	if state.PriceBand != "" {
		q.Set("price", string(state.PriceBand))
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

func (r *Renderer) RenderPagination(p filters.Pagination, state models.FilterState) (template.HTML, error) {
	view := paginationView{
		Visible:      p.Visible(),
		Prev:         p.Prev(),
		Next:         p.Next(),
		PrevHref:     PageQuery(state, p.Prev()),
		NextHref:     PageQuery(state, p.Next()),
		PrevDisabled: p.PrevDisabled,
		NextDisabled: p.NextDisabled,
	}
	for _, n := range p.Pages {
		view.Pages = append(view.Pages, pageLink{Number: n, Href: PageQuery(state, n), Current: n == p.Current})
	}
	return r.execute("pagination", view)
}

type filtersView struct {
	Ready      bool
	Options    models.OptionSets
	State      models.FilterState
	PriceBands []models.PriceBand
}

func (r *Renderer) RenderFilters(opts models.OptionSets, state models.FilterState, ready bool) (template.HTML, error) {
	return r.execute("filters", filtersView{Ready: ready, Options: opts, State: state, PriceBands: models.PriceBands})
}

// RenderStatus draws the loading indicator, the inline load error, or
// nothing once the catalog is ready.
func (r *Renderer) RenderStatus(st catalog.Status) (template.HTML, error) {
	return r.execute("status", st)
}

type Page struct {
	Title      string
	Search     string
	Ready      bool
	Status     template.HTML
	Filters    template.HTML
	Grid       template.HTML
	Pagination template.HTML
}

func (r *Renderer) RenderPage(w io.Writer, page Page) error {
	if page.Title == "" {
		page.Title = "Product Catalog"
	}
	if err := r.tmpl.ExecuteTemplate(w, "page", page); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
