package routes

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/princinho/catalogviewer/catalog"
	"github.com/princinho/catalogviewer/models"
	"github.com/princinho/catalogviewer/render"
	"github.com/princinho/catalogviewer/session"
)

type fetcherFunc func(ctx context.Context) ([]models.Product, error)

func (f fetcherFunc) FetchProducts(ctx context.Context) ([]models.Product, error) { return f(ctx) }

func testProducts() []models.Product {
	out := make([]models.Product, 0, 25)
	for i := 1; i <= 25; i++ {
		out = append(out, models.Product{
			Id:       i,
			Title:    fmt.Sprintf("Product %02d", i),
			Category: []string{"beauty", "groceries"}[i%2],
			Brand:    "Acme",
			Price:    float64(i * 4),
			Reviews:  []models.Review{{ReviewerName: "Ann", Rating: 4, Date: "2024-05-23T08:56:21.618Z"}},
		})
	}
	out[0].Tags = []string{"Phone"}
	out[1].DiscountPercentage = 20
	out[1].Price = 100
	return out
}

func newServer(t *testing.T, f fetcherFunc) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := catalog.NewStore(nil)
	store.Load(context.Background(), f)

	renderer, err := render.New("https://img.test/placeholder.png")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	reg := session.NewRegistry(store, renderer, 50*time.Millisecond, time.Hour, nil)

	srv := httptest.NewServer(Setup(Deps{
		Store:    store,
		Renderer: renderer,
		Sessions: reg,
		Log:      zap.NewNop(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func okFetcher(ctx context.Context) ([]models.Product, error) { return testProducts(), nil }

func getDoc(t *testing.T, client *http.Client, url string) *goquery.Document {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func postView(t *testing.T, client *http.Client, url, body string) session.View {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s: status %d", url, resp.StatusCode)
	}
	var v session.View
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func TestPing(t *testing.T) {
	srv := newServer(t, okFetcher)
	resp, err := http.Get(srv.URL + "/ping")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCatalogPageRendersFirstPage(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)

	doc := getDoc(t, client, srv.URL+"/")
	if got := doc.Find("#products-container .product-card").Length(); got != models.ProductsPerPage {
		t.Fatalf("expected %d cards, got %d", models.ProductsPerPage, got)
	}
	if got := doc.Find("#pagination .page-number").Length(); got != 3 {
		t.Fatalf("expected 3 page controls, got %d", got)
	}
	if got := doc.Find("#category-filter option").Length(); got != 3 {
		t.Fatalf("expected 3 category options, got %d", got)
	}
	if doc.Find("#loading #loading-indicator").Length() != 0 {
		t.Fatal("loading indicator should be hidden once loaded")
	}

	u, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if len(client.Jar.Cookies(u.URL)) == 0 {
		t.Fatal("expected a session cookie")
	}
}

func TestCatalogPageQueryState(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)

	doc := getDoc(t, client, srv.URL+"/?page=3")
	if got := doc.Find(".product-card").Length(); got != 1 {
		t.Fatalf("expected 1 card on page 3, got %d", got)
	}
	if id, _ := doc.Find(".product-card").Attr("data-product-id"); id != "25" {
		t.Fatalf("expected product 25, got %s", id)
	}

	doc = getDoc(t, client, srv.URL+"/?q=phone")
	if got := doc.Find(".product-card").Length(); got != 1 {
		t.Fatalf("expected 1 card for tag search, got %d", got)
	}
	if doc.Find("#pagination a").Length() != 0 {
		t.Fatal("single page should not render pagination")
	}

	doc = getDoc(t, client, srv.URL+"/?q=nothing-matches")
	if !strings.Contains(doc.Find("#products-container").Text(), "No products found") {
		t.Fatal("expected empty-state placeholder")
	}
}

func TestActionsFilterAndPaginate(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)
	getDoc(t, client, srv.URL+"/")

	v := postView(t, client, srv.URL+"/actions/page/2", "")
	if v.Page.Current != 2 {
		t.Fatalf("expected page 2, got %d", v.Page.Current)
	}
	v = postView(t, client, srv.URL+"/actions/next", "")
	if v.Page.Current != 3 || !v.Page.NextDisabled {
		t.Fatalf("expected last page, got %+v", v.Page)
	}

	v = postView(t, client, srv.URL+"/actions/filter", `{"term":"","category":"beauty"}`)
	if v.Page.Current != 1 {
		t.Fatalf("filter change must reset to page 1, got %d", v.Page.Current)
	}
	if v.Total != 12 {
		t.Fatalf("expected 12 beauty products, got %d", v.Total)
	}
	if v.Filter.Category != "beauty" {
		t.Fatalf("unexpected filter %+v", v.Filter)
	}

	v = postView(t, client, srv.URL+"/actions/prev", "")
	if v.Page.Current != 1 || !v.Page.PrevDisabled {
		t.Fatalf("expected first page, got %+v", v.Page)
	}
}

func TestFlushedSearchReturnsView(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)
	getDoc(t, client, srv.URL+"/")

	v := postView(t, client, srv.URL+"/actions/search", `{"term":"  PHONE ","flush":true}`)
	if v.Total != 1 || v.Page.Current != 1 {
		t.Fatalf("unexpected view total=%d page=%d", v.Total, v.Page.Current)
	}
}

func TestActionFilterAppliesSearchBoxText(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)
	getDoc(t, client, srv.URL+"/")

	v := postView(t, client, srv.URL+"/actions/filter", `{"term":"Product 0","category":"beauty"}`)
	// beauty holds the even ids; 2, 4, 6 and 8 match "product 0"
	if v.Total != 4 || v.Filter.SearchTerm != "Product 0" {
		t.Fatalf("unexpected view total=%d filter=%+v", v.Total, v.Filter)
	}

	v = postView(t, client, srv.URL+"/actions/filter", `{"term":"Product 0","price":"10to50"}`)
	if v.Filter.Category != "beauty" || v.Filter.PriceBand != models.Price10To50 {
		t.Fatalf("earlier selections must persist, got %+v", v.Filter)
	}
	// product 2 lists at 100; 4, 6 and 8 cost 16, 24 and 32
	if v.Total != 3 {
		t.Fatalf("expected 3 products, got %d", v.Total)
	}
}

func TestActionFilterRejectsBadBodies(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)

	for _, body := range []string{`{"price":"free"}`, `{"term":"phone"}`, `{}`} {
		resp, err := client.Post(srv.URL+"/actions/filter", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func readEvent(t *testing.T, r *bufio.Reader, name string) string {
	t.Helper()
	event := ""
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:") && event == name:
			return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func TestSearchIsDeliveredOnEventStream(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)
	getDoc(t, client, srv.URL+"/")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	streamClient := &http.Client{Jar: client.Jar}
	resp, err := streamClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)

	var initial session.View
	if err := json.Unmarshal([]byte(readEvent(t, reader, "view")), &initial); err != nil {
		t.Fatalf("decode initial view: %v", err)
	}
	if initial.Total != 25 {
		t.Fatalf("expected 25 products in initial view, got %d", initial.Total)
	}

	for _, term := range []string{"p", "ph", "phone"} {
		r, err := client.Post(srv.URL+"/actions/search", "application/json", strings.NewReader(fmt.Sprintf(`{"term":%q}`, term)))
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		r.Body.Close()
		if r.StatusCode != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", r.StatusCode)
		}
	}

	var searched session.View
	for searched.Filter.SearchTerm != "phone" {
		if err := json.Unmarshal([]byte(readEvent(t, reader, "view")), &searched); err != nil {
			t.Fatalf("decode view: %v", err)
		}
	}
	if searched.Total != 1 {
		t.Fatalf("expected 1 product for phone, got %d", searched.Total)
	}
}

func TestQuickView(t *testing.T) {
	srv := newServer(t, okFetcher)
	client := newClient(t)

	doc := getDoc(t, client, srv.URL+"/products/2/quick-view")
	if doc.Find("#product-modal").Length() != 1 {
		t.Fatal("expected modal markup")
	}
	if got := doc.Find(".final-price").Text(); got != "$80.00" {
		t.Fatalf("unexpected price %q", got)
	}

	resp, err := client.Get(srv.URL + "/products/999/quick-view")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAPIProducts(t *testing.T) {
	srv := newServer(t, okFetcher)

	resp, err := http.Get(srv.URL + "/api/products?category=beauty&page=2&limit=5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Items []models.Product `json:"items"`
		Page  int              `json:"page"`
		Limit int              `json:"limit"`
		Total int              `json:"total"`
		Pages int              `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 12 || body.Pages != 3 || len(body.Items) != 5 || body.Page != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Items[0].Id != 12 {
		t.Fatalf("expected product 12 first on page 2, got %d", body.Items[0].Id)
	}

	bad, err := http.Get(srv.URL + "/api/products?price=cheap")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.StatusCode)
	}
}

func TestAPIFilters(t *testing.T) {
	srv := newServer(t, okFetcher)

	resp, err := http.Get(srv.URL + "/api/filters")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string][]map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	cats := body["categories"]
	if len(cats) != 2 || cats[0]["value"] != "groceries" || cats[0]["label"] != "Groceries" {
		t.Fatalf("unexpected categories %v", cats)
	}
	if len(body["prices"]) != 4 {
		t.Fatalf("expected 4 price bands, got %d", len(body["prices"]))
	}
}

func TestFailedCatalog(t *testing.T) {
	srv := newServer(t, func(ctx context.Context) ([]models.Product, error) {
		return nil, errors.New("upstream returned 500")
	})
	client := newClient(t)

	doc := getDoc(t, client, srv.URL+"/")
	if got := doc.Find("#loading p.text-red-500").Text(); got != catalog.LoadErrorMessage {
		t.Fatalf("expected inline error, got %q", got)
	}
	if doc.Find(".product-card").Length() != 0 {
		t.Fatal("no product cards after a failed load")
	}

	resp, err := http.Get(srv.URL + "/api/products")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}
