package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Batch — один запуск импорта, созданный формой/API или scheduler.
//
// Batch выполняется по шагам: один шаг — один вызов оркестратора
// для одного языка. Между шагами Context сохраняется в БД.
type Batch struct {
	// ID — уникальный идентификатор batch.
	ID uuid.UUID `json:"id"`

	// CSVPath — путь к загруженному файлу с продуктами.
	CSVPath string `json:"csv_path"`

	// Languages — языки, по одному шагу на каждый.
	Languages []string `json:"languages"`

	// Status — текущий статус batch.
	Status BatchStatus `json:"status"`

	// Context — состояние batch между шагами.
	Context BatchContext `json:"context"`

	// Step — индекс текущего языка в Languages.
	Step int `json:"step"`

	// Error — текст ошибки, если batch завершился с FAILED.
	Error string `json:"error,omitempty"`

	// Source — кто создал batch ("api", "scheduler", "cli").
	Source string `json:"source,omitempty"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewBatch создаёт batch в статусе PENDING.
func NewBatch(csvPath string, languages []string, source string) *Batch {
	return &Batch{
		ID:        uuid.New(),
		CSVPath:   csvPath,
		Languages: languages,
		Status:    BatchStatusPending,
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если batch ещё не завершён.
func (b *Batch) Duration() time.Duration {
	if b.StartedAt == nil || b.FinishedAt == nil {
		return 0
	}
	return b.FinishedAt.Sub(*b.StartedAt)
}

// MarkRunning переводит batch в статус RUNNING.
func (b *Batch) MarkRunning() {
	now := time.Now()
	b.Status = BatchStatusRunning
	if b.StartedAt == nil {
		b.StartedAt = &now
	}
}

// MarkPending возвращает batch в очередь. StartedAt сохраняется.
func (b *Batch) MarkPending() {
	b.Status = BatchStatusPending
}

// MarkSucceeded переводит batch в статус SUCCEEDED.
func (b *Batch) MarkSucceeded() {
	now := time.Now()
	b.Status = BatchStatusSucceeded
	b.FinishedAt = &now
}

// MarkFailed переводит batch в статус FAILED с ошибкой.
func (b *Batch) MarkFailed(err string) {
	now := time.Now()
	b.Status = BatchStatusFailed
	b.FinishedAt = &now
	b.Error = err
}

// BatchContext — агрегат batch, который оркестратор меняет на каждом шаге.
//
// Создаётся при старте batch, живёт до итогового Summary.
type BatchContext struct {
	// Messages — сообщения о прогрессе в порядке появления.
	Messages []string `json:"messages"`

	// Successes — число jobs, завершённых с COMPLETED.
	Successes int `json:"successes"`

	// Failures — число jobs, завершённых с FAILED.
	Failures int `json:"failures"`

	// NumProcessed — накопленное число строк текущего job
	// между INCOMPLETE шагами. Обнуляется на COMPLETED.
	NumProcessed int `json:"num_processed"`

	// Continuing — предыдущий шаг вернул INCOMPLETE,
	// текущий job продолжает тот же проход.
	Continuing bool `json:"continuing"`

	// Finished — текущий шаг завершён, можно переходить к следующему.
	Finished bool `json:"finished"`
}

// Clone возвращает копию контекста с собственным срезом сообщений.
func (c BatchContext) Clone() BatchContext {
	c.Messages = slices.Clone(c.Messages)
	return c
}

// AddMessage добавляет сообщение о прогрессе.
func (c *BatchContext) AddMessage(msg string) {
	c.Messages = append(c.Messages, msg)
}
