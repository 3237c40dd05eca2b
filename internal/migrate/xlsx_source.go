package migrate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXSource — источник из листа Excel. Первая строка — заголовок.
//
// Конфигурация:
//
//	plugin: xlsx
//	path: /data/products.xlsx
//	sheet: Products   # по умолчанию первый лист
//	ids: [sku]
type XLSXSource struct {
	path  string
	sheet string
	ids   []string
}

// NewXLSXSource создаёт XLSXSource.
func NewXLSXSource(cfg map[string]any) (Source, error) {
	path := stringValue(cfg, "path", "")
	if path == "" {
		return nil, fmt.Errorf("%w: xlsx source requires path", ErrInvalidDefinition)
	}
	ids := stringList(cfg, "ids")
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: xlsx source requires ids", ErrInvalidDefinition)
	}

	return &XLSXSource{
		path:  path,
		sheet: stringValue(cfg, "sheet", ""),
		ids:   ids,
	}, nil
}

// IDs возвращает ключевые колонки.
func (s *XLSXSource) IDs() []string {
	return s.ids
}

// Open открывает книгу и читает заголовок.
func (s *XLSXSource) Open(ctx context.Context) (RowIterator, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	if !rows.Next() {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("xlsx %s: sheet %q is empty", s.path, sheet)
	}
	header, err := rows.Columns()
	if err != nil {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("read xlsx header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return &xlsxIterator{file: f, rows: rows, header: header}, nil
}

type xlsxIterator struct {
	file   *excelize.File
	rows   *excelize.Rows
	header []string
}

func (it *xlsxIterator) Next() (Row, error) {
	for it.rows.Next() {
		record, err := it.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read xlsx row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		return zipRow(it.header, record), nil
	}
	if err := it.rows.Error(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (it *xlsxIterator) Close() error {
	it.rows.Close()
	return it.file.Close()
}
