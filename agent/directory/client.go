package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

const (
	pharmaciesPath       = "/pharmacies"
	maxResponseSizeBytes = 2 << 20
)

// Config is the pharmacy directory connection config, loaded with a
// DIRECTORY_ prefix.
type Config struct {
	BaseURL      string        `split_words:"true" default:"https://67e14fb758cc6bf785254550.mockapi.io"`
	Timeout      time.Duration `default:"10s"`
	MaxRetries   int           `split_words:"true" default:"3"`
	RetryBackoff time.Duration `split_words:"true" default:"500ms"`
}

// Client queries the pharmacy directory service. Transient failures
// (429 and 5xx, plus transport errors) are retried with exponential
// backoff up to MaxRetries attempts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for
// tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("directory base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid directory base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: retries,
		backoff:    backoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Lookup resolves a phone number to its directory record. A clean
// miss is ErrNotFound; anything else wraps ErrLookup.
func (c *Client) Lookup(ctx context.Context, phone string) (*statex.CustomerRecord, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: empty phone number", contractx.ErrInvalidInput)
	}

	payloads, err := c.fetchPharmacies(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrLookup, err)
	}

	want := digitsOnly(phone)
	for _, p := range payloads {
		if p.Phone == phone || (want != "" && digitsOnly(p.Phone) == want) {
			record := p.toRecord()
			return &record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", contractx.ErrNotFound, phone)
}

// All returns every pharmacy in the directory.
func (c *Client) All(ctx context.Context) ([]statex.CustomerRecord, error) {
	payloads, err := c.fetchPharmacies(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrLookup, err)
	}
	records := make([]statex.CustomerRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, p.toRecord())
	}
	return records, nil
}

// SearchQuery narrows a directory search. Zero fields are ignored.
type SearchQuery struct {
	City      string
	State     string
	MinVolume int
	MaxVolume int
}

// Search filters the directory by location and volume. City and state
// are passed to the service; volume bounds are applied here because
// the service cannot range-filter.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]statex.CustomerRecord, error) {
	query := url.Values{}
	if q.City != "" {
		query.Set("city", q.City)
	}
	if q.State != "" {
		query.Set("state", q.State)
	}

	payloads, err := c.fetchPharmacies(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrLookup, err)
	}

	records := make([]statex.CustomerRecord, 0, len(payloads))
	for _, p := range payloads {
		record := p.toRecord()
		if q.MinVolume > 0 && record.MonthlyVolume < q.MinVolume {
			continue
		}
		if q.MaxVolume > 0 && record.MonthlyVolume > q.MaxVolume {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// HealthCheck verifies the directory answers at all.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.fetchPharmacies(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrLookup, err)
	}
	return nil
}

/* ------------------------------- transport -------------------------------- */

func (c *Client) fetchPharmacies(ctx context.Context, query url.Values) ([]pharmacyPayload, error) {
	endpoint := c.baseURL + pharmaciesPath
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, attempt-1); err != nil {
				return nil, err
			}
			log.Warn().
				Int("attempt", attempt).
				Str("endpoint", endpoint).
				Msg("retrying directory request")
		}

		body, retryable, err := c.get(ctx, endpoint)
		if err == nil {
			var payloads []pharmacyPayload
			if uerr := json.Unmarshal(body, &payloads); uerr != nil {
				return nil, fmt.Errorf("decode directory response: %w", uerr)
			}
			return payloads, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("retries exhausted after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) get(ctx context.Context, endpoint string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("directory request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read directory response: %w", err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return body, false, nil
	}
	return nil, retryableStatus(resp.StatusCode), fmt.Errorf("unexpected status code %d", resp.StatusCode)
}

func (c *Client) wait(ctx context.Context, retry int) error {
	backoff := c.backoff << (retry - 1)
	select {
	case <-ctx.Done():
		return fmt.Errorf("directory retry aborted: %w", ctx.Err())
	case <-time.After(backoff):
		return nil
	}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

/* --------------------------------- wire ----------------------------------- */

// pharmacyPayload is the directory's wire shape. rxVolume arrives as
// a number or a formatted string depending on the record.
type pharmacyPayload struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	RxVolume      json.RawMessage `json:"rxVolume"`
	Email         string          `json:"email"`
	ContactPerson string          `json:"contactPerson"`
}

func (p pharmacyPayload) toRecord() statex.CustomerRecord {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Unknown Pharmacy"
	}
	return statex.CustomerRecord{
		Name:          name,
		Phone:         strings.TrimSpace(p.Phone),
		City:          strings.TrimSpace(p.City),
		State:         strings.TrimSpace(p.State),
		MonthlyVolume: parseVolume(p.RxVolume),
		Email:         strings.TrimSpace(p.Email),
		ContactPerson: strings.TrimSpace(p.ContactPerson),
	}
}

func parseVolume(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		if asNumber < 0 {
			return 0
		}
		return int(asNumber)
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0
	}
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, asString)
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
