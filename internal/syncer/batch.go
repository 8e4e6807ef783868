package syncer

import (
	"context"
	"gomarket_sync/internal/core/errs"
	"slices"

	"golang.org/x/time/rate"
)

// BatchFunc отправляет один пакет одним вызовом API.
type BatchFunc[T any] func(ctx context.Context, batch []T) error

// Submitter -- необязательные настройки отправки пакетов.
type Submitter struct {
	// Limiter выдерживает темп запросов, это не повтор.
	Limiter *rate.Limiter
	// OnBatch вызывается после каждого пакета, err -- результат вызова.
	OnBatch func(index, size int, err error)
}

// Chunk режет items на подряд идущие пакеты размером не больше limit.
func Chunk[T any](items []T, limit int) ([][]T, error) {
	if limit <= 0 {
		return nil, errs.Configf("batch.chunk", "batch limit must be positive, got %d", limit)
	}
	chunks := make([][]T, 0, (len(items)+limit-1)/limit)
	for c := range slices.Chunk(items, limit) {
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// Submit отправляет пакеты по очереди, дожидаясь ответа на каждый.
// На первой ошибке останавливается и возвращает *errs.SubmitError.
// Уже отправленные пакеты не откатываются. Пустой список -- ни одного вызова.
func Submit[T any](ctx context.Context, s Submitter, items []T, limit int, send BatchFunc[T]) (int, error) {
	chunks, err := Chunk(items, limit)
	if err != nil {
		return 0, err
	}

	submitted := 0
	for i, chunk := range chunks {
		if s.Limiter != nil {
			if err := s.Limiter.Wait(ctx); err != nil {
				return submitted, &errs.SubmitError{Chunk: i, Chunks: len(chunks), Submitted: submitted, Err: errs.Network("batch.wait", err)}
			}
		}
		err := send(ctx, chunk)
		if s.OnBatch != nil {
			s.OnBatch(i, len(chunk), err)
		}
		if err != nil {
			return submitted, &errs.SubmitError{Chunk: i, Chunks: len(chunks), Submitted: submitted, Err: err}
		}
		submitted += len(chunk)
	}
	return submitted, nil
}
