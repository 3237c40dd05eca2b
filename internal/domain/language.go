package domain

// DefaultLocale — язык по умолчанию. Для него используется
// базовый job без суффикса и не создаётся derivative.
const DefaultLocale = "en"

// Language — сконфигурированный язык.
type Language struct {
	// Code — код языка ("en", "fr", "de").
	Code string `json:"code"`

	// Name — отображаемое название ("French").
	Name string `json:"name"`
}

// Settings — сохранённые настройки формы импорта.
type Settings struct {
	// ProductsCSV — ссылка на загруженный файл с продуктами.
	ProductsCSV string `json:"products_csv"`

	// Language — язык назначения.
	Language string `json:"language"`
}
