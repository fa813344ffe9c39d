package retail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gajeshbhat/Verkada-API-Integration/pkg/config"
	pkgerrors "github.com/gajeshbhat/Verkada-API-Integration/pkg/errors"
)

const (
	timeWindowFormat            = "2006-01-02T15:04:05"
	responseBodyReadLimit int64 = 1024
	apiKeyHeader                = "x-api-key"
)

// Client wraps the retail backend's read APIs: sales transactions, inventory
// items, points of service, and store metadata.
type Client struct {
	httpClient   *http.Client
	salesURL     string
	inventoryURL string
	posURL       string
	storeURL     string
	apiKey       string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the retail client from the endpoint configuration.
func NewClient(cfg config.RetailConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.SalesURL) == "" {
		return nil, fmt.Errorf("retail sales URL is required")
	}
	if strings.TrimSpace(cfg.InventoryURL) == "" {
		return nil, fmt.Errorf("retail inventory URL is required")
	}
	if strings.TrimSpace(cfg.POSURL) == "" {
		return nil, fmt.Errorf("retail pos URL is required")
	}
	if strings.TrimSpace(cfg.StoreURL) == "" {
		return nil, fmt.Errorf("retail store URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		salesURL:     strings.TrimRight(cfg.SalesURL, "/"),
		inventoryURL: strings.TrimRight(cfg.InventoryURL, "/"),
		posURL:       strings.TrimRight(cfg.POSURL, "/"),
		storeURL:     strings.TrimRight(cfg.StoreURL, "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// SalesTransaction is a raw transaction record from the sales API.
type SalesTransaction struct {
	TransactionID     int64  `json:"transaction_id"`
	TransactionNumber string `json:"transaction_number"`
	TransactionDate   int64  `json:"transaction_date"`
	ItemID            int64  `json:"item_id"`
	CameraID          int64  `json:"camera_id"`
	POSID             int64  `json:"pos_id"`
}

// OccurredAt returns the transaction's epoch-seconds date as a UTC instant.
func (t SalesTransaction) OccurredAt() time.Time {
	return time.Unix(t.TransactionDate, 0).UTC()
}

// Item is an inventory record.
type Item struct {
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	ItemPrice decimal.Decimal `json:"item_price"`
}

// PointOfService is a till record from the POS API.
type PointOfService struct {
	POSID    int64  `json:"pos_id"`
	POSName  string `json:"pos_name"`
	StoreID  int64  `json:"store_id"`
	CameraID int64  `json:"camera_id"`
}

// Store is a store metadata record.
type Store struct {
	StoreID      int64  `json:"store_id"`
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
	StorePhone   string `json:"store_phone"`
	StoreEmail   string `json:"store_email"`
}

// TransactionsWithin queries the sales API for transactions inside the closed
// window [start, end], expressed at second precision in UTC.
func (c *Client) TransactionsWithin(ctx context.Context, start, end time.Time) ([]SalesTransaction, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "retail client not configured")
	}

	params := url.Values{}
	params.Set("start_time", start.UTC().Format(timeWindowFormat))
	params.Set("end_time", end.UTC().Format(timeWindowFormat))

	var transactions []SalesTransaction
	if err := c.getJSON(ctx, c.salesURL+"?"+params.Encode(), "sales transactions", &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Item looks up a single inventory item by its external id.
func (c *Client) Item(ctx context.Context, itemID int64) (*Item, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "retail client not configured")
	}

	var item Item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%d", c.inventoryURL, itemID), "item", &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PointOfServiceByCamera looks up the till associated with the provided camera
// reference via the camera_id query parameter.
func (c *Client) PointOfServiceByCamera(ctx context.Context, cameraID int64) (*PointOfService, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "retail client not configured")
	}

	params := url.Values{}
	params.Set("camera_id", strconv.FormatInt(cameraID, 10))

	var pos PointOfService
	if err := c.getJSON(ctx, c.posURL+"?"+params.Encode(), "point of service", &pos); err != nil {
		return nil, err
	}
	return &pos, nil
}

// Store looks up a store by its external id.
func (c *Client) Store(ctx context.Context, storeID int64) (*Store, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "retail client not configured")
	}

	var store Store
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%d", c.storeURL, storeID), "store", &store); err != nil {
		return nil, err
	}
	return &store, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, op string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("build %s request", op))
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", op))
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), fmt.Sprintf("%s request failed", op))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", op))
	}
	return nil
}
