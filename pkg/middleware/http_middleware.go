package middleware

import (
	"gomarket_sync/metrics"
	"net/http"
	"strings"
	"time"
	"unicode"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// InstrumentTransport оборачивает транспорт клиента для сбора метрик.
// Ошибка транспорта считается со статусом 0.
func InstrumentTransport(marketplace string, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)

		status := 0
		if err == nil {
			status = resp.StatusCode
		}
		metrics.RecordRequest(marketplace, r.Method, EndpointLabel(r.URL.Path), status, time.Since(start))
		return resp, err
	})
}

// EndpointLabel заменяет числовые сегменты пути на {id}, чтобы номер кампании
// не размножал серии метрик.
func EndpointLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.IndexFunc(p, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
