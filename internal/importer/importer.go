package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"grocery-api/internal/domain"
	catalogsvc "grocery-api/internal/service/catalog"
)

// ProductImporter upserts one product and sets its stock.
type ProductImporter interface {
	ImportProduct(ctx context.Context, in catalogsvc.ProductInput, stock int) (*domain.Product, error)
}

// CSVImporter reads a product catalogue with the columns
// name,price,description,stock_level (any order, extra columns ignored).
type CSVImporter struct {
	reader  *csv.Reader
	catalog ProductImporter
}

func NewCSVImporter(r io.Reader, catalog ProductImporter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, catalog: catalog}
}

var requiredColumns = []string{"name", "price", "description"}

// Run imports every row and returns the number of products written. It stops
// at the first invalid row; rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		if blank(record) {
			continue
		}

		in, stock, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := i.catalog.ImportProduct(ctx, in, stock); err != nil {
			return imported, fmt.Errorf("line %d: import %q: %w", line, in.Name, err)
		}
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (catalogsvc.ProductInput, int, error) {
	in := catalogsvc.ProductInput{
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
	}
	if raw := pick(record, index, "price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return in, 0, fmt.Errorf("invalid price %q", raw)
		}
		in.Price = &price
	}

	stock := 0
	if raw := pick(record, index, "stock_level"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, 0, fmt.Errorf("invalid stock level %q", raw)
		}
		stock = n
	}
	return in, stock, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
