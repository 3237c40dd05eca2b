package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// NoticeResponse — итоговое сообщение batch.
type NoticeResponse struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// SummaryResponse — итог завершённого batch.
type SummaryResponse struct {
	Successes int              `json:"successes"`
	Failures  int              `json:"failures"`
	Notices   []NoticeResponse `json:"notices"`
}

// BatchResponse — batch импорта из API.
type BatchResponse struct {
	ID         string           `json:"id"`
	CSVPath    string           `json:"csv_path"`
	Languages  []string         `json:"languages"`
	Status     string           `json:"status"`
	Step       int              `json:"step"`
	Messages   []string         `json:"messages"`
	Successes  int              `json:"successes"`
	Failures   int              `json:"failures"`
	Error      string           `json:"error,omitempty"`
	Source     string           `json:"source,omitempty"`
	Summary    *SummaryResponse `json:"summary,omitempty"`
	StartedAt  string           `json:"started_at,omitempty"`
	FinishedAt string           `json:"finished_at,omitempty"`
	CreatedAt  string           `json:"created_at"`
}

// Terminal возвращает true, если batch завершён.
func (b BatchResponse) Terminal() bool {
	return b.Status == "SUCCEEDED" || b.Status == "FAILED"
}

// CreateImportResponse — ответ на запуск импорта.
type CreateImportResponse struct {
	Batch    BatchResponse `json:"batch"`
	Warnings []string      `json:"warnings,omitempty"`
}

// JobResponse — import job из API.
type JobResponse struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Language     string   `json:"language,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Status       string   `json:"status"`
	LastResult   string   `json:"last_result,omitempty"`
	Interrupt    string   `json:"interrupt,omitempty"`
}

// LanguageResponse — язык из API.
type LanguageResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// SettingsResponse — настройки импорта.
type SettingsResponse struct {
	ProductsCSV string `json:"products_csv"`
	Language    string `json:"language"`
}

// --- Request types ---

// CreateImportRequest — запуск импорта.
type CreateImportRequest struct {
	ProductsCSV string   `json:"products_csv"`
	Language    string   `json:"language,omitempty"`
	Languages   []string `json:"languages,omitempty"`
}

// ListImportsOpts — параметры фильтрации batch.
type ListImportsOpts struct {
	Status string
	Limit  int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для API импорта.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Imports ---

// StartImport создаёт batch импорта.
func (c *Client) StartImport(req CreateImportRequest) (*CreateImportResponse, error) {
	var resp CreateImportResponse
	err := c.post("/api/v1/imports", req, &resp)
	return &resp, err
}

// ListImports возвращает список batch с фильтрацией.
func (c *Client) ListImports(opts ListImportsOpts) ([]BatchResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var batches []BatchResponse
	err := c.list("/api/v1/imports", params, &batches)
	return batches, err
}

// GetImport возвращает batch по ID.
func (c *Client) GetImport(id string) (*BatchResponse, error) {
	var b BatchResponse
	err := c.get("/api/v1/imports/"+url.PathEscape(id), &b)
	return &b, err
}

// --- Jobs ---

// ListJobs возвращает import jobs с их состоянием.
func (c *Client) ListJobs() ([]JobResponse, error) {
	var jobs []JobResponse
	err := c.list("/api/v1/jobs", nil, &jobs)
	return jobs, err
}

// StopJob запрашивает остановку job.
func (c *Client) StopJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+url.PathEscape(id)+"/stop", nil, &job)
	return &job, err
}

// ResetJob сбрасывает job в IDLE.
func (c *Client) ResetJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+url.PathEscape(id)+"/reset", nil, &job)
	return &job, err
}

// --- Languages ---

// ListLanguages возвращает сконфигурированные языки.
func (c *Client) ListLanguages() ([]LanguageResponse, error) {
	var langs []LanguageResponse
	err := c.list("/api/v1/languages", nil, &langs)
	return langs, err
}

// --- Settings ---

// GetSettings возвращает сохранённые настройки.
func (c *Client) GetSettings() (*SettingsResponse, error) {
	var s SettingsResponse
	err := c.get("/api/v1/settings", &s)
	return &s, err
}

// UpdateSettings сохраняет настройки.
func (c *Client) UpdateSettings(s SettingsResponse) (*SettingsResponse, error) {
	var saved SettingsResponse
	err := c.put("/api/v1/settings", s, &saved)
	return &saved, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if len(er.Error.Fields) > 0 {
		return fmt.Errorf("%s: %s %v", er.Error.Code, er.Error.Message, er.Error.Fields)
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
