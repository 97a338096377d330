// Package importer loads catalog products from CSV files.
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
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Required columns. Column order is free and extra columns are ignored.
const (
	colName    = "nombre"
	colBarcode = "codigo_barra"
	colPrice   = "precio_venta"
	colStock   = "stock"
)

// CSVImporter reads catalog CSV files and inserts or updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      logrus.FieldLogger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger logrus.FieldLogger) *CSVImporter {
	if logger == nil {
		logger = logging.Discard()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger,
	}
}

// Run parses every row and upserts it. The first invalid row stops the import;
// rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index, err := headerIndex(headers)
	if err != nil {
		return 0, err
	}

	imported := 0
	for row := 2; ; row++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", row, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", row, err)
		}
		saved, err := i.productRepo.Upsert(ctx, p)
		if err != nil {
			return imported, fmt.Errorf("row %d: upsert product %q: %w", row, p.Name, err)
		}
		i.logger.WithFields(logrus.Fields{"row": row, "product_id": saved.ID}).Debug("importer: product saved")
		imported++
	}

	i.logger.WithField("count", imported).Info("importer: done")
	return imported, nil
}

func headerIndex(headers []string) (map[string]int, error) {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range []string{colName, colPrice} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return idx, nil
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	name := pick(record, index, colName)
	if name == "" {
		return domain.Product{}, errors.New("nombre is required")
	}

	price, err := decimal.NewFromString(pick(record, index, colPrice))
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid precio_venta: %w", err)
	}
	if price.IsNegative() {
		return domain.Product{}, errors.New("precio_venta must not be negative")
	}

	stock := 0
	if s := pick(record, index, colStock); s != "" {
		stock, err = strconv.Atoi(s)
		if err != nil || stock < 0 {
			return domain.Product{}, fmt.Errorf("invalid stock %q", s)
		}
	}

	return domain.Product{
		Name:      name,
		Barcode:   pick(record, index, colBarcode),
		UnitPrice: price.Round(2),
		Stock:     stock,
	}, nil
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
