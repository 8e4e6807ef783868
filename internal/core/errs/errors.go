// Package errs описывает виды ошибок синхронизации.
// Любая ошибка прогона всплывает наверх и прерывает его, вид нужен только для
// логов и для выбора кода выхода.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork       Kind = "network"
	KindAuth          Kind = "auth"
	KindFormat        Kind = "format"
	KindRateLimit     Kind = "rate_limit"
	KindPartialSubmit Kind = "partial_submit"
	KindResponse      Kind = "response"
	KindConfig        Kind = "config"
)

// Сентинелы для errors.Is: errors.Is(err, errs.ErrRateLimit).
var (
	ErrNetwork       = &Error{Kind: KindNetwork}
	ErrAuth          = &Error{Kind: KindAuth}
	ErrFormat        = &Error{Kind: KindFormat}
	ErrRateLimit     = &Error{Kind: KindRateLimit}
	ErrPartialSubmit = &Error{Kind: KindPartialSubmit}
	ErrResponse      = &Error{Kind: KindResponse}
	ErrConfig        = &Error{Kind: KindConfig}
)

// Error -- ошибка с видом и операцией, на которой она произошла.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает только вид, поэтому сентинелы совпадают с любой ошибкой того же вида.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Network(op string, err error) error { return E(KindNetwork, op, err) }

func Auth(op string, err error) error { return E(KindAuth, op, err) }

func RateLimit(op string, err error) error { return E(KindRateLimit, op, err) }

func Response(op string, err error) error { return E(KindResponse, op, err) }

func Formatf(op, format string, args ...interface{}) error {
	return E(KindFormat, op, fmt.Errorf(format, args...))
}

func Configf(op, format string, args ...interface{}) error {
	return E(KindConfig, op, fmt.Errorf(format, args...))
}

// KindOf возвращает вид первой типизированной ошибки в цепочке.
// PartialSubmit определяется раньше, чем вид вложенной ошибки.
func KindOf(err error) (Kind, bool) {
	var se *SubmitError
	if errors.As(err, &se) && se.Partial() {
		return KindPartialSubmit, true
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// SubmitError сообщает, на каком пакете остановилась отправка.
// Уже отправленные пакеты не откатываются.
type SubmitError struct {
	Chunk     int // индекс упавшего пакета, с нуля
	Chunks    int // всего пакетов
	Submitted int // сколько элементов ушло до ошибки
	Applied   int // пакеты, принятые раньше в том же прогоне (другой вид или другая цель)
	Err       error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("batch %d/%d failed after %d submitted items: %v",
		e.Chunk+1, e.Chunks, e.Submitted, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Partial -- часть пакетов прогона уже применена на стороне маркетплейса.
func (e *SubmitError) Partial() bool { return e.Chunk > 0 || e.Applied > 0 }

func (e *SubmitError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Partial() && t.Kind == KindPartialSubmit && t.Op == "" && t.Err == nil
}
