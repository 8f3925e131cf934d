package polar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	"github.com/couchcryptid/ans-recharge-service/internal/observability"
)

// Client implements domain.RechargeSource using the Polar AccessLink
// nightly recharge API. Each call makes exactly one request: no retries,
// no caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a nightly recharge client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: endpoint,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchRecharges returns every reading in the response, in the order the API
// listed them. Callers pick the latest with domain.Latest.
func (c *Client) FetchRecharges(ctx context.Context, token domain.Token) ([]domain.RecoveryReading, error) {
	if token.Empty() {
		return nil, domain.ErrInputMissing
	}

	start := time.Now()
	readings, err := c.doRequest(ctx, token)
	c.metrics.RechargeDuration.Observe(time.Since(start).Seconds())
	c.metrics.RechargeRequests.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("nightly recharge fetched", "readings", len(readings))
	return readings, nil
}

// FetchLatest fetches recharges and returns the reading with the greatest date.
func (c *Client) FetchLatest(ctx context.Context, token domain.Token) (domain.RecoveryReading, error) {
	readings, err := c.FetchRecharges(ctx, token)
	if err != nil {
		return domain.RecoveryReading{}, err
	}
	return domain.Latest(readings)
}

func (c *Client) doRequest(ctx context.Context, token domain.Token) ([]domain.RecoveryReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Reveal())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error carries the URL only, never request headers.
		return nil, fmt.Errorf("recharge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.APIError{StatusCode: resp.StatusCode}
	}

	return Decode(resp.Body)
}

// maxResponseBytes caps how much of a response body Decode reads.
const maxResponseBytes = 1 << 20

// Decode parses a nightly recharge response body. A missing "recharges" field,
// a record without date, ans_charge or ans_charge_status, a body over 1 MiB or
// trailing data after the JSON object is malformed; an empty list is ErrNoData.
func Decode(r io.Reader) ([]domain.RecoveryReading, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxResponseBytes))
	var body response
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", domain.ErrMalformedResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after response: %w", domain.ErrMalformedResponse)
	}
	if body.Recharges == nil {
		return nil, fmt.Errorf("missing recharges field: %w", domain.ErrMalformedResponse)
	}
	if len(*body.Recharges) == 0 {
		return nil, domain.ErrNoData
	}

	readings := make([]domain.RecoveryReading, 0, len(*body.Recharges))
	for i, rec := range *body.Recharges {
		reading, err := rec.toReading()
		if err != nil {
			return nil, fmt.Errorf("recharge %d: %w", i, err)
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// outcome labels a fetch result for the requests counter.
func outcome(err error) string {
	var apiErr *domain.APIError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	default:
		return "transport_error"
	}
}

// Polar API response types. Pointers distinguish absent fields from zero values.

type response struct {
	Recharges *[]record `json:"recharges"`
}

type record struct {
	Date            *string  `json:"date"`
	ANSCharge       *float64 `json:"ans_charge"`
	ANSChargeStatus *int     `json:"ans_charge_status"`
}

func (r record) toReading() (domain.RecoveryReading, error) {
	switch {
	case r.Date == nil:
		return domain.RecoveryReading{}, fmt.Errorf("missing date: %w", domain.ErrMalformedResponse)
	case r.ANSCharge == nil:
		return domain.RecoveryReading{}, fmt.Errorf("missing ans_charge: %w", domain.ErrMalformedResponse)
	case r.ANSChargeStatus == nil:
		return domain.RecoveryReading{}, fmt.Errorf("missing ans_charge_status: %w", domain.ErrMalformedResponse)
	}

	date, err := parseDate(*r.Date)
	if err != nil {
		return domain.RecoveryReading{}, fmt.Errorf("date %q: %w", *r.Date, domain.ErrMalformedResponse)
	}

	status := *r.ANSChargeStatus
	return domain.RecoveryReading{
		Date:       date,
		Value:      *r.ANSCharge,
		StatusCode: &status,
	}, nil
}

// parseDate accepts Polar's calendar dates ("2024-01-01") and full RFC 3339
// timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
