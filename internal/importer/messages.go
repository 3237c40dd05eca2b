package importer

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Ключи сообщений batch.
const (
	msgCompleted     = "Upgraded %s (processed %d items total)"
	msgContinuing    = "Continuing with %s (processed %d items)"
	msgStopped       = "Operation stopped by request"
	msgFailed        = "Operation on %s failed"
	msgSkipped       = "Operation on %s skipped due to unfulfilled dependencies"
	msgTasksDone     = "Completed %d import tasks successfully"
	msgTasksFailed   = "%d content import failed"
	msgNotCompleted  = "Content import not completed"
	msgImportSuccess = "Content imported successfully."
)

// printer форматирует сообщения с учётом множественного числа.
var printer = newPrinter()

func newPrinter() *message.Printer {
	b := catalog.NewBuilder()

	set := func(key string, msg catalog.Message) {
		if err := b.Set(language.English, key, msg); err != nil {
			panic(err)
		}
	}

	set(msgCompleted, plural.Selectf(2, "%d",
		"=1", "Upgraded %[1]s (processed 1 item total)",
		"other", "Upgraded %[1]s (processed %[2]d items total)",
	))
	set(msgContinuing, plural.Selectf(2, "%d",
		"=1", "Continuing with %[1]s (processed 1 item)",
		"other", "Continuing with %[1]s (processed %[2]d items)",
	))
	set(msgTasksDone, plural.Selectf(1, "%d",
		"=1", "Completed 1 import task successfully",
		"other", "Completed %[1]d import tasks successfully",
	))
	set(msgTasksFailed, plural.Selectf(1, "%d",
		"=1", "1 upgrade failed",
		"other", "%[1]d content import failed",
	))

	return message.NewPrinter(language.English, message.Catalog(b))
}
