package converters

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type ColumnConverter func(string) (interface{}, error)

func DecimalConverter(cell string) (interface{}, error) {
	cell = normalizeNumber(cell)
	if cell == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q", cell)
	}
	return d, nil
}

func DefaultConverter(cell string) (interface{}, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	return cell, nil
}

// SKUConverter приводит артикул к строке. Excel-выгрузки иногда отдают "12345.0".
func SKUConverter(cell string) (interface{}, error) {
	cell = strings.TrimSpace(cell)
	if strings.HasSuffix(cell, ".0") {
		if _, err := strconv.Atoi(strings.TrimSuffix(cell, ".0")); err == nil {
			cell = strings.TrimSuffix(cell, ".0")
		}
	}
	return cell, nil
}

// QuantityConverter разбирает ячейку остатка поставщика.
// ">N" означает "больше N" и превращается в overflow, значения <= reserve -- в 0.
// Пустая ячейка -- 0.
func QuantityConverter(overflow, reserve int) ColumnConverter {
	return func(cell string) (interface{}, error) {
		cell = strings.ReplaceAll(strings.TrimSpace(cell), " ", "")
		if cell == "" {
			return 0, nil
		}
		if strings.HasPrefix(cell, ">") {
			if _, err := strconv.Atoi(strings.TrimPrefix(cell, ">")); err != nil {
				return nil, fmt.Errorf("invalid quantity %q", cell)
			}
			return overflow, nil
		}
		if whole, ok := strings.CutSuffix(cell, ".0"); ok {
			cell = whole
		}
		n, err := strconv.Atoi(cell)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid quantity %q", cell)
		}
		if n <= reserve {
			return 0, nil
		}
		return n, nil
	}
}

// PriceConverter разбирает цену вида "12 345,50 руб." в неотрицательный decimal.
func PriceConverter(cell string) (interface{}, error) {
	v, err := DecimalConverter(cell)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("empty price")
	}
	d := v.(decimal.Decimal)
	if d.IsNegative() {
		return nil, fmt.Errorf("negative price %s", d)
	}
	return d, nil
}

// normalizeNumber выделяет первое число в ячейке: "5'990.00 руб." -> "5990.00", "руб. 1500" -> "1500".
// Пробелы и апострофы внутри числа -- разделители разрядов, запятая -- десятичная точка.
// Текст до и после числа отбрасывается.
func normalizeNumber(cell string) string {
	runes := []rune(strings.TrimSpace(cell))
	start := slices.IndexFunc(runes, unicode.IsDigit)
	if start < 0 {
		return ""
	}

	var b strings.Builder
	if start > 0 && runes[start-1] == '-' {
		b.WriteRune('-')
	}
scan:
	for _, r := range runes[start:] {
		switch {
		case unicode.IsDigit(r), r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		case r == ' ', r == '\'', r == '\u00a0', r == '\u202f':
		default:
			break scan
		}
	}
	return strings.TrimRight(b.String(), ".")
}
