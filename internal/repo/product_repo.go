package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/ContentImport/internal/migrate"
)

// ErrMissingSKU — в значениях строки нет sku.
var ErrMissingSKU = errors.New("missing sku")

// Product — импортированный продукт на одном языке.
type Product struct {
	ID       int64          `json:"id"`
	SKU      string         `json:"sku"`
	Langcode string         `json:"langcode"`
	Title    string         `json:"title"`
	Fields   map[string]any `json:"fields"`
}

// ProductRepo — репозиторий продуктов.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepo создаёт новый ProductRepo.
func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// Upsert создаёт или обновляет продукт по (sku, langcode) и возвращает его id.
func (r *ProductRepo) Upsert(ctx context.Context, p *Product) (int64, error) {
	fieldsJSON, err := json.Marshal(p.Fields)
	if err != nil {
		return 0, fmt.Errorf("marshal fields: %w", err)
	}

	query := `
		INSERT INTO products (sku, langcode, title, fields)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku, langcode) DO UPDATE
		SET title = EXCLUDED.title, fields = EXCLUDED.fields, updated_at = now()
		RETURNING id
	`
	var id int64
	if err := r.pool.QueryRow(ctx, query, p.SKU, p.Langcode, p.Title, fieldsJSON).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert product: %w", err)
	}
	return id, nil
}

// DestinationFactory возвращает фабрику плагина назначения "product".
//
// Конфигурация плагина:
//   - langcode: язык записей (подставляется для derivatives)
//   - key: поле с sku (default: sku)
//   - title: поле с названием (default: title)
func (r *ProductRepo) DestinationFactory() migrate.DestinationFactory {
	return func(cfg map[string]any) (migrate.Destination, error) {
		return newProductDestination(r, cfg)
	}
}

// productWriter — запись продукта; ProductRepo в рабочем коде.
type productWriter interface {
	Upsert(ctx context.Context, p *Product) (int64, error)
}

// productDestination — плагин назначения, пишущий строки в products.
type productDestination struct {
	products productWriter
	langcode string
	keyField string
	titleKey string
}

func newProductDestination(products productWriter, cfg map[string]any) (*productDestination, error) {
	d := &productDestination{
		products: products,
		langcode: configString(cfg, "langcode", "en"),
		keyField: configString(cfg, "key", "sku"),
		titleKey: configString(cfg, "title", "title"),
	}
	if d.keyField == d.titleKey {
		return nil, fmt.Errorf("%w: product key and title use the same field %q", migrate.ErrInvalidDefinition, d.keyField)
	}
	return d, nil
}

// Import сохраняет строку как продукт. langcode из process сильнее
// языка destination.
func (d *productDestination) Import(ctx context.Context, values map[string]any, _ string) (string, error) {
	sku := fmt.Sprint(valueOr(values, d.keyField, ""))
	if sku == "" {
		return "", fmt.Errorf("%w: field %q", ErrMissingSKU, d.keyField)
	}

	p := &Product{
		SKU:      sku,
		Langcode: d.langcode,
		Title:    fmt.Sprint(valueOr(values, d.titleKey, "")),
		Fields:   make(map[string]any),
	}
	for k, v := range values {
		switch k {
		case d.keyField, d.titleKey:
		case "langcode":
			if s, ok := v.(string); ok && s != "" {
				p.Langcode = s
			}
		default:
			p.Fields[k] = v
		}
	}

	id, err := d.products.Upsert(ctx, p)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func valueOr(values map[string]any, key string, def any) any {
	if v, ok := values[key]; ok && v != nil {
		return v
	}
	return def
}

func configString(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return def
}
