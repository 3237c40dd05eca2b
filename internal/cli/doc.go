// Package cli реализует инструмент командной строки импорта продуктов.
//
// # Обзор
//
// CLI — клиентская утилита для API импорта. Работает через HTTP
// и не импортирует внутренние пакеты системы.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API. Инкапсулирует запросы, парсинг ответов
// (DataResponse, ListResponse, ErrorResponse) и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	resp, err := client.StartImport(cli.CreateImportRequest{ProductsCSV: "/data/products.csv", Language: "fr"})
//
// ## Output
//
// Форматирование вывода: таблицы (text/tabwriter) по умолчанию,
// JSON с флагом --json. Данные идут в stdout, сообщения в stderr:
//
//	content-import import list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - import: start, list, show
//   - job: list, stop, reset
//   - language: list
//   - settings: get, set
//
// Каждая группа создаётся фабричной функцией (NewImportCmd и т.д.),
// принимающей clientFn и outputFn.
package cli
