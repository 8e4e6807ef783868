package middleware

import (
	"context"
	"errors"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/pkg/logger"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEndpointLabel(t *testing.T) {
	cases := map[string]string{
		"/campaigns/12345/offers/stocks": "/campaigns/{id}/offers/stocks",
		"/v1/product/import/prices":      "/v1/product/import/prices",
		"/":                              "/",
	}
	for in, want := range cases {
		if got := EndpointLabel(in); got != want {
			t.Errorf("EndpointLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInstrumentTransportPassesThrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer ts.Close()

	client := &http.Client{Transport: InstrumentTransport("test", nil)}
	resp, err := client.Get(ts.URL + "/campaigns/1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestLoggingKeepsError(t *testing.T) {
	want := errs.Auth("op", errors.New("401"))
	fn := Chain(func(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
		return want
	}, Logging(logger.NewLogger(io.Discard, "")))

	if err := fn(context.Background(), http.MethodGet, "/", nil, nil); err != want {
		t.Fatalf("error changed: %v", err)
	}
}
