// Package catalog reads products from a remote storefront catalog over HTTP.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const remoteName = "catalog"

// Client talks to the public catalog endpoints of another storefront.
type Client struct {
	baseURL string
	http    *httpclient.BreakerClient
	logger  *slog.Logger
}

// NewClient builds a client with retries and a circuit breaker around baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	hc := httpclient.NewBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig(remoteName),
		logger,
	)
	return NewClientWithHTTP(baseURL, hc, logger)
}

// NewClientWithHTTP uses an already configured breaker client.
func NewClientWithHTTP(baseURL string, hc *httpclient.BreakerClient, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger,
	}
}

// ListProducts fetches one page of the catalog.
func (c *Client) ListProducts(ctx context.Context, page, limit int) (*domain.ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out domain.ProductPage
	if err := c.get(ctx, "/api/v1/products?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if out.Products == nil {
		out.Products = []domain.Product{}
	}
	return &out, nil
}

// GetProduct fetches a single product. Unknown ids map to ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var env struct {
		Data *domain.Product `json:"data"`
	}
	if err := c.get(ctx, "/api/v1/products/"+url.PathEscape(id), &env); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.ID == "" {
		return nil, fmt.Errorf("catalog returned product without id for %q", id)
	}
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.http.Get(ctx, c.baseURL+path)
	if err != nil {
		if httpclient.IsUnavailable(err) {
			c.logger.WarnContext(ctx, "catalog unavailable",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return apperrors.ServiceUnavailable("catalog unavailable", err)
		}
		return fmt.Errorf("catalog request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, remoteName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
