package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"gomarket_sync/internal/core/errs"
	"gomarket_sync/pkg/business/service/feed/converters"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const opProcess = "feed.process"

// Processor отвечает за чтение и фильтрацию CSV данных поставщика.
type Processor struct {
	columns          []string
	columnConverters map[string]converters.ColumnConverter
	encoding         encoding.Encoding
	comma            rune
	keyColumn        int
}

// NewProcessor создаёт новый Processor. По умолчанию Windows-1251 и разделитель ';'.
func NewProcessor(columns []string) *Processor {
	return &Processor{
		columns:          columns,
		columnConverters: map[string]converters.ColumnConverter{},
		encoding:         charmap.Windows1251,
		comma:            ';',
		keyColumn:        -1,
	}
}

func (p *Processor) SetNewConverters(converters map[string]converters.ColumnConverter) *Processor {
	if len(converters) == 0 {
		return p
	}
	p.columnConverters = converters
	return p
}

// SetEncoding задает кодировку фида, nil -- UTF-8 без перекодирования.
func (p *Processor) SetEncoding(enc encoding.Encoding) *Processor {
	p.encoding = enc
	return p
}

func (p *Processor) SetComma(comma rune) *Processor {
	if comma != 0 {
		p.comma = comma
	}
	return p
}

// SetKeyColumn -- строки с пустым значением в этой колонке пропускаются до конвертации
// (в выгрузках так выглядят заголовки групп товаров).
func (p *Processor) SetKeyColumn(column string) *Processor {
	p.keyColumn = -1
	for i, col := range p.columns {
		if col == column {
			p.keyColumn = i
		}
	}
	return p
}

// ProcessCSV читает CSV, ищет строку заголовка и возвращает строки с колонками в порядке p.columns.
// Строки до заголовка (шапка выгрузки) пропускаются.
func (p *Processor) ProcessCSV(reader io.Reader) ([][]interface{}, error) {
	if p.encoding != nil {
		reader = transform.NewReader(reader, p.encoding.NewDecoder())
	}
	csvReader := csv.NewReader(reader)
	csvReader.Comma = p.comma
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	columnMap, err := p.findHeader(csvReader)
	if err != nil {
		return nil, err
	}

	var result [][]interface{}
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Formatf(opProcess, "csv read error: %v", err)
		}
		if isBlank(row) {
			continue
		}
		line, _ := csvReader.FieldPos(0)

		filteredRow := make([]string, len(p.columns))
		for i, col := range p.columns {
			if idx := columnMap[col]; idx < len(row) {
				filteredRow[i] = row[idx]
			}
		}
		if p.keyColumn >= 0 && trimCell(filteredRow[p.keyColumn]) == "" {
			continue
		}

		converted, err := convertRowToInterfaceSlice(filteredRow, p.columns, p.columnConverters)
		if err != nil {
			return nil, errs.Formatf(opProcess, "line %d: %v", line, err)
		}
		result = append(result, converted)
	}

	if len(result) == 0 {
		return nil, errs.Formatf(opProcess, "csv data is empty")
	}
	return result, nil
}

// findHeader читает строки до первой, в которой есть все нужные колонки.
func (p *Processor) findHeader(csvReader *csv.Reader) (map[string]int, error) {
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return nil, errs.Formatf(opProcess, "header with columns %q not found", p.columns)
		}
		if err != nil {
			return nil, errs.Formatf(opProcess, "csv read error: %v", err)
		}
		if columnMap, ok := p.matchHeader(row); ok {
			return columnMap, nil
		}
	}
}

func (p *Processor) matchHeader(row []string) (map[string]int, bool) {
	columnMap := make(map[string]int, len(p.columns))
	for i, cell := range row {
		cell = trimCell(cell)
		if _, seen := columnMap[cell]; !seen {
			columnMap[cell] = i
		}
	}
	for _, col := range p.columns {
		if _, ok := columnMap[col]; !ok {
			return nil, false
		}
	}
	return columnMap, true
}

func convertRowToInterfaceSlice(row []string, columns []string, colConverters map[string]converters.ColumnConverter) ([]interface{}, error) {
	result := make([]interface{}, len(row))

	for i, cell := range row {
		colName := columns[i]
		var val interface{}
		var err error

		if conv, exists := colConverters[colName]; exists {
			val, err = conv(cell)
		} else {
			val, err = converters.DefaultConverter(cell)
		}

		if err != nil {
			return nil, fmt.Errorf("column %q, value %q: %w", colName, cell, err)
		}

		result[i] = val
	}

	return result, nil
}
