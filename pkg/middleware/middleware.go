package middleware

import (
	"context"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/pkg/logger"
	"time"
)

// RequestFunc -- сигнатура BaseClient.DoRequest.
type RequestFunc func(ctx context.Context, method, endpoint string, requestBody, response interface{}) error

type Middleware func(next RequestFunc) RequestFunc

// Chain оборачивает next так, что первый middleware вызывается первым.
func Chain(next RequestFunc, mws ...Middleware) RequestFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		next = mws[i](next)
	}
	return next
}

// Logging пишет в лог каждый вызов API с длительностью и видом ошибки.
func Logging(log logger.Logger) Middleware {
	return func(next RequestFunc) RequestFunc {
		return func(ctx context.Context, method, endpoint string, requestBody, response interface{}) error {
			start := time.Now()
			err := next(ctx, method, endpoint, requestBody, response)
			if err != nil {
				kind, _ := errs.KindOf(err)
				log.Warn("%s %s failed in %s (kind=%s): %s", method, endpoint, time.Since(start).Round(time.Millisecond), kind, err)
				return err
			}
			log.Debug("%s %s done in %s", method, endpoint, time.Since(start).Round(time.Millisecond))
			return nil
		}
	}
}
