package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/pkg/logger"
	"gomarket_sync/pkg/middleware"
	"io"
	"net/http"
	"strings"
	"time"
)

// сколько байт тела ошибки попадает в текст ошибки
const errorBodyLimit = 512

type BaseClient struct {
	ApiURL string
	name   string
	auth   AuthEngine
	log    logger.Logger
	client *http.Client
	do     middleware.RequestFunc
}

// NewBaseClient создает JSON-клиент маркетплейса. Запросы считаются в метриках
// с меткой name, auth применяется к каждому запросу.
func NewBaseClient(name, apiURL string, auth AuthEngine, timeout time.Duration, log logger.Logger, mws ...middleware.Middleware) *BaseClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &BaseClient{
		ApiURL: strings.TrimRight(apiURL, "/"),
		name:   name,
		auth:   auth,
		log:    log,
		client: &http.Client{
			Timeout:   timeout,
			Transport: middleware.InstrumentTransport(name, http.DefaultTransport),
		},
	}
	c.do = middleware.Chain(c.doRequest, mws...)
	return c
}

func (c *BaseClient) Name() string { return c.name }

// DoRequest отправляет requestBody как JSON и декодирует ответ в response (если он не nil).
func (c *BaseClient) DoRequest(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
	return c.do(ctx, method, endpoint, requestBody, response)
}

func (c *BaseClient) doRequest(ctx context.Context, method, endpoint string, requestBody interface{}, response interface{}) error {
	op := c.name + " " + method + " " + endpoint
	c.log.Debug("Got signal for %s", op)

	var body io.Reader
	if requestBody != nil {
		bodyBytes, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ApiURL+endpoint, body)
	if err != nil {
		return errs.Configf(op, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		c.auth.SetApiKey(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errs.Network(op, fmt.Errorf("request was cancelled: %w", errors.Join(ctxErr, err)))
		}
		return errs.Network(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Network(op, fmt.Errorf("failed to read response body: %w", err))
	}

	if err := classifyStatus(op, resp, respBody); err != nil {
		return err
	}

	if response == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, response); err != nil {
		return errs.Response(op, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	return nil
}

// classifyStatus переводит код ответа в вид ошибки. 2xx -- не ошибка.
func classifyStatus(op string, resp *http.Response, body []byte) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	cause := fmt.Errorf("status %d: %s", code, snippet(body))
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.Auth(op, cause)
	case http.StatusTooManyRequests:
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			cause = fmt.Errorf("status %d, retry after %s: %s", code, ra, snippet(body))
		}
		return errs.RateLimit(op, cause)
	}
	return errs.Response(op, cause)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorBodyLimit {
		s = s[:errorBodyLimit] + "..."
	}
	if s == "" {
		return "<empty body>"
	}
	return s
}
