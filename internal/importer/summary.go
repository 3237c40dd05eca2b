package importer

import "github.com/shaiso/ContentImport/internal/domain"

// Severity — уровень итогового сообщения.
type Severity string

const (
	SeverityStatus Severity = "status"
	SeverityError  Severity = "error"
)

// Notice — итоговое сообщение для пользователя.
type Notice struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// Summary — итог batch импорта.
type Summary struct {
	Successes int      `json:"successes"`
	Failures  int      `json:"failures"`
	Notices   []Notice `json:"notices"`
}

// OK возвращает true, если ни один job не завершился с FAILED.
func (s Summary) OK() bool {
	return s.Failures == 0
}

// Finish строит итог batch по накопленному BatchContext.
func Finish(bc domain.BatchContext) Summary {
	s := Summary{
		Successes: bc.Successes,
		Failures:  bc.Failures,
	}

	if bc.Successes > 0 {
		s.Notices = append(s.Notices, Notice{
			Severity: SeverityStatus,
			Text:     printer.Sprintf(msgTasksDone, bc.Successes),
		})
	}

	if bc.Failures > 0 {
		s.Notices = append(s.Notices,
			Notice{Severity: SeverityStatus, Text: printer.Sprintf(msgTasksFailed, bc.Failures)},
			Notice{Severity: SeverityError, Text: printer.Sprintf(msgNotCompleted)},
		)
	} else {
		s.Notices = append(s.Notices, Notice{Severity: SeverityStatus, Text: printer.Sprintf(msgImportSuccess)})
	}

	return s
}
