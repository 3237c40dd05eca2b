// Package api содержит HTTP API сервер импорта.
//
// Структура:
//   - handler.go          — Handler с DI (хранилища, каталог jobs, publisher, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - validate.go         — валидация запросов
//   - dto.go              — Data Transfer Objects (request/response)
//   - import_handler.go   — обработчики для /imports
//   - job_handler.go      — обработчики для /jobs
//   - language_handler.go — обработчики для /languages
//   - settings_handler.go — обработчики для /settings
//
// API запускает импорт файла продуктов, показывает прогресс batch
// и позволяет остановить или сбросить зависший job.
package api
