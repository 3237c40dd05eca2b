// Package scheduler повторяет импорт по cron-расписанию.
//
// На каждом тике Scheduler читает последние сохранённые настройки
// (файл продуктов и язык), создаёт batch и публикует batch.pending.
// Пока предыдущий batch не завершён, новый не создаётся.
package scheduler
