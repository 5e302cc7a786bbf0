package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/princinho/catalogviewer/config"
	"github.com/princinho/catalogviewer/models"
)

// NetworkError is returned for every failed catalog fetch: transport
// failures, non-2xx responses and undecodable bodies.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

var ErrBadStatus = errors.New("network response was not ok")

type Source struct {
	client   *http.Client
	endpoint string
	limit    int
	delay    int
}

func NewSource(cfg config.CatalogConfig, client *http.Client) *Source {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Source{
		client:   client,
		endpoint: cfg.APIURL,
		limit:    cfg.Limit,
		delay:    cfg.DelayMillis,
	}
}

func (s *Source) requestURL() (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse catalog url: %w", err)
	}
	q := u.Query()
	if s.limit > 0 {
		q.Set("limit", strconv.Itoa(s.limit))
	}
	if s.delay > 0 {
		q.Set("delay", strconv.Itoa(s.delay))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchProducts issues the single catalog GET and returns the products in
// response order.
func (s *Source) FetchProducts(ctx context.Context) ([]models.Product, error) {
	endpoint, err := s.requestURL()
	if err != nil {
		return nil, &NetworkError{URL: s.endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &NetworkError{URL: endpoint, StatusCode: resp.StatusCode, Err: ErrBadStatus}
	}

	var body models.ProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &NetworkError{URL: endpoint, Err: fmt.Errorf("decode products after %s: %w", time.Since(started).Round(time.Millisecond), err)}
	}
	if body.Products == nil {
		return []models.Product{}, nil
	}
	return body.Products, nil
}
