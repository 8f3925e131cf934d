package polar

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	"github.com/couchcryptid/ans-recharge-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchLatest_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, contentTypeJSON, r.Header.Get("Accept"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"recharges":[{"date":"2024-01-01","ans_charge":-5.0,"ans_charge_status":2}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	latest, err := c.FetchLatest(context.Background(), domain.Token(testToken))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), latest.Date)
	assert.Equal(t, -5.0, latest.Value)
	require.NotNil(t, latest.StatusCode)
	assert.Equal(t, 2, *latest.StatusCode)
	assert.Equal(t, domain.LoadReduce, domain.ClassifyStatus(*latest.StatusCode))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RechargeRequests.WithLabelValues("success")))
}

func TestClient_FetchLatest_SelectsByDateNotPosition(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recharges":[
		{"date":"2024-01-03","ans_charge":4.1,"ans_charge_status":4},
		{"date":"2024-01-01","ans_charge":-2.0,"ans_charge_status":2},
		{"date":"2024-01-02","ans_charge":0.5,"ans_charge_status":3}
	]}`)

	latest, err := testClient(srv.URL).FetchLatest(context.Background(), domain.Token(testToken))
	require.NoError(t, err)
	assert.Equal(t, 4.1, latest.Value)
	assert.Equal(t, 4, *latest.StatusCode)
}

func TestClient_FetchRecharges_KeepsAPIOrder(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recharges":[
		{"date":"2024-01-02","ans_charge":1,"ans_charge_status":3},
		{"date":"2024-01-01","ans_charge":2,"ans_charge_status":3}
	]}`)

	readings, err := testClient(srv.URL).FetchRecharges(context.Background(), domain.Token(testToken))
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 1.0, readings[0].Value)
	assert.Equal(t, 2.0, readings[1].Value)
}

func TestClient_FetchRecharges_APIError(t *testing.T) {
	srv := jsonServer(t, http.StatusNotFound, `{"message":"Not Found"}`)

	c := testClient(srv.URL)
	_, err := c.FetchRecharges(context.Background(), domain.Token(testToken))
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "404")
	assert.NotErrorIs(t, err, domain.ErrNoData)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RechargeRequests.WithLabelValues("api_error")))
}

func TestClient_FetchRecharges_Unauthorized(t *testing.T) {
	srv := jsonServer(t, http.StatusUnauthorized, `{"message":"token `+testToken+` rejected"}`)

	_, err := testClient(srv.URL).FetchRecharges(context.Background(), domain.Token(testToken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.NotContains(t, err.Error(), testToken)
}

func TestClient_FetchRecharges_NoData(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recharges":[]}`)

	c := testClient(srv.URL)
	_, err := c.FetchRecharges(context.Background(), domain.Token(testToken))
	require.ErrorIs(t, err, domain.ErrNoData)

	var apiErr *domain.APIError
	assert.NotErrorAs(t, err, &apiErr)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RechargeRequests.WithLabelValues("no_data")))
}

func TestClient_FetchLatest_NoData(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recharges":[]}`)

	_, err := testClient(srv.URL).FetchLatest(context.Background(), domain.Token(testToken))
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestClient_FetchRecharges_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"recharges":`},
		{"missing recharges field", `{"data":[]}`},
		{"null recharges", `{"recharges":null}`},
		{"recharges not a list", `{"recharges":{"date":"2024-01-01"}}`},
		{"missing date", `{"recharges":[{"ans_charge":1,"ans_charge_status":3}]}`},
		{"missing ans_charge", `{"recharges":[{"date":"2024-01-01","ans_charge_status":3}]}`},
		{"missing status", `{"recharges":[{"date":"2024-01-01","ans_charge":1}]}`},
		{"fractional status", `{"recharges":[{"date":"2024-01-01","ans_charge":1,"ans_charge_status":2.5}]}`},
		{"bad date", `{"recharges":[{"date":"01/02/2024","ans_charge":1,"ans_charge_status":3}]}`},
		{"concatenated objects", `{"recharges":[{"date":"2024-01-01","ans_charge":1,"ans_charge_status":3}]}{"recharges":[]}`},
		{"trailing garbage", `{"recharges":[{"date":"2024-01-01","ans_charge":1,"ans_charge_status":3}]} oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, http.StatusOK, tt.body)
			c := testClient(srv.URL)

			_, err := c.FetchRecharges(context.Background(), domain.Token(testToken))
			require.ErrorIs(t, err, domain.ErrMalformedResponse)
			assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RechargeRequests.WithLabelValues("malformed")))
		})
	}
}

func TestClient_FetchRecharges_OutOfRangeStatusIsNotAnError(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recharges":[{"date":"2024-01-01","ans_charge":3.2,"ans_charge_status":7}]}`)

	readings, err := testClient(srv.URL).FetchRecharges(context.Background(), domain.Token(testToken))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 7, *readings[0].StatusCode)
}

func TestClient_FetchRecharges_RFC3339Date(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recharges":[{"date":"2024-01-01T06:30:00Z","ans_charge":1,"ans_charge_status":3}]}`)

	readings, err := testClient(srv.URL).FetchRecharges(context.Background(), domain.Token(testToken))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 6, 30, 0, 0, time.UTC), readings[0].Date.UTC())
}

func TestClient_FetchRecharges_EmptyTokenSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchRecharges(context.Background(), domain.Token(""))
	require.ErrorIs(t, err, domain.ErrInputMissing)
	assert.Zero(t, calls.Load())
}

func TestClient_FetchRecharges_SingleRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchRecharges(context.Background(), domain.Token(testToken))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "no retry on failure")
}

func TestClient_FetchRecharges_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.FetchRecharges(context.Background(), domain.Token(testToken))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testToken)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RechargeRequests.WithLabelValues("transport_error")))
}

func TestClient_FetchRecharges_ContextCancelled(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"recharges":[]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).FetchRecharges(ctx, domain.Token(testToken))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecode(t *testing.T) {
	readings, err := Decode(strings.NewReader(`{"recharges":[{"date":"2024-02-10","ans_charge":2.25,"ans_charge_status":5}]}`))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 2.25, readings[0].Value)
	assert.Equal(t, 5, *readings[0].StatusCode)
}

func TestDecode_TrailingWhitespace(t *testing.T) {
	readings, err := Decode(strings.NewReader("{\"recharges\":[{\"date\":\"2024-02-10\",\"ans_charge\":1,\"ans_charge_status\":3}]}\n\n"))
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestDecode_BodyTooLarge(t *testing.T) {
	body := strings.Repeat(" ", maxResponseBytes) + `{"recharges":[{"date":"2024-02-10","ans_charge":1,"ans_charge_status":3}]}`

	_, err := Decode(strings.NewReader(body))
	require.ErrorIs(t, err, domain.ErrMalformedResponse)
}
