package feed

import (
	"context"
	"fmt"
	"gomarket_sync/internal/core/errs"
	"io"
	"net/http"
	"time"
)

const opFetch = "feed.fetch"

// Fetcher определяет интерфейс для получения данных по URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch возвращает тело ответа; закрыть его должен вызывающий.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Configf(opFetch, "bad feed url %q: %v", url, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, errs.Network(opFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errs.Network(opFetch, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url))
	}
	return resp.Body, nil
}
