package migrate

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// CSVSource — источник из CSV файла с заголовком.
//
// Конфигурация:
//
//	plugin: csv
//	path: /data/products.csv
//	delimiter: ";"   # по умолчанию ","
//	ids: [sku]
type CSVSource struct {
	path      string
	delimiter rune
	ids       []string
}

// NewCSVSource создаёт CSVSource.
func NewCSVSource(cfg map[string]any) (Source, error) {
	path := stringValue(cfg, "path", "")
	if path == "" {
		return nil, fmt.Errorf("%w: csv source requires path", ErrInvalidDefinition)
	}

	delimiter := ','
	if d := stringValue(cfg, "delimiter", ""); d != "" {
		r, size := utf8.DecodeRuneInString(d)
		if size != len(d) {
			return nil, fmt.Errorf("%w: csv delimiter must be a single character", ErrInvalidDefinition)
		}
		delimiter = r
	}

	ids := stringList(cfg, "ids")
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: csv source requires ids", ErrInvalidDefinition)
	}

	return &CSVSource{path: path, delimiter: delimiter, ids: ids}, nil
}

// IDs возвращает ключевые колонки.
func (s *CSVSource) IDs() []string {
	return s.ids
}

// Open открывает файл и читает заголовок.
func (s *CSVSource) Open(ctx context.Context) (RowIterator, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}

	r := csv.NewReader(f)
	r.Comma = s.delimiter
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv %s: empty file", s.path)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return &csvIterator{file: f, reader: r, header: header}, nil
}

type csvIterator struct {
	file   *os.File
	reader *csv.Reader
	header []string
}

func (it *csvIterator) Next() (Row, error) {
	for {
		record, err := it.reader.Read()
		if err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		return zipRow(it.header, record), nil
	}
}

func (it *csvIterator) Close() error {
	return it.file.Close()
}

// zipRow собирает Row из заголовка и значений.
// Лишние значения отбрасываются, недостающие становятся пустыми.
func zipRow(header, record []string) Row {
	row := make(Row, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		if i < len(record) {
			row[col] = strings.TrimSpace(record[i])
		} else {
			row[col] = ""
		}
	}
	return row
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
