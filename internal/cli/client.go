package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// EventResponse — триггерное событие из API.
type EventResponse struct {
	Type       string `json:"type"`
	Branch     string `json:"branch,omitempty"`
	Tag        string `json:"tag,omitempty"`
	Commit     string `json:"commit,omitempty"`
	ReceivedAt string `json:"received_at"`
}

// PipelineResponse — pipeline из API.
type PipelineResponse struct {
	ID             string         `json:"id"`
	Event          EventResponse  `json:"event"`
	Descriptor     map[string]any `json:"descriptor"`
	Status         string         `json:"status"`
	Error          string         `json:"error,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	StartedAt      string         `json:"started_at,omitempty"`
	FinishedAt     string         `json:"finished_at,omitempty"`
	ReportedAt     string         `json:"reported_at,omitempty"`
	CreatedAt      string         `json:"created_at"`
}

// JobResponse — job из API.
type JobResponse struct {
	ID           string `json:"id"`
	PipelineID   string `json:"pipeline_id"`
	Position     int    `json:"position"`
	Channel      string `json:"channel"`
	AllowFailure bool   `json:"allow_failure"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	StartedAt    string `json:"started_at,omitempty"`
	FinishedAt   string `json:"finished_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// StepResponse — шаг из API.
type StepResponse struct {
	ID         string `json:"id"`
	JobID      string `json:"job_id"`
	Position   int    `json:"position"`
	StepID     string `json:"step_id"`
	Name       string `json:"name,omitempty"`
	Class      string `json:"class"`
	Command    string `json:"command"`
	Status     string `json:"status"`
	ExitCode   *int   `json:"exit_code,omitempty"`
	Output     string `json:"output,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// JobReportResponse — строка отчёта по одному job.
type JobReportResponse struct {
	JobID        string `json:"job_id"`
	Position     int    `json:"position"`
	Channel      string `json:"channel"`
	AllowFailure bool   `json:"allow_failure"`
	Status       string `json:"status"`
	Verdict      string `json:"verdict"`
	Error        string `json:"error,omitempty"`
	DurationMs   int64  `json:"duration_ms,omitempty"`
}

// ReportResponse — итоговый отчёт pipeline из API.
type ReportResponse struct {
	PipelineID string              `json:"pipeline_id"`
	Event      EventResponse       `json:"event"`
	Status     string              `json:"status"`
	Error      string              `json:"error,omitempty"`
	Jobs       []JobReportResponse `json:"jobs"`
	ReportedAt string              `json:"reported_at"`
}

// TriggerResponse — trigger из API.
type TriggerResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	CronExpr       string         `json:"cron_expr,omitempty"`
	IntervalSec    int            `json:"interval_sec,omitempty"`
	Timezone       string         `json:"timezone"`
	Branch         string         `json:"branch"`
	Descriptor     map[string]any `json:"descriptor"`
	Enabled        bool           `json:"enabled"`
	NextDueAt      string         `json:"next_due_at,omitempty"`
	LastFiredAt    string         `json:"last_fired_at,omitempty"`
	LastPipelineID string         `json:"last_pipeline_id,omitempty"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

// --- Request types ---

// SubmitEventRequest — приём триггерного события.
type SubmitEventRequest struct {
	Type           string          `json:"type"`
	Branch         string          `json:"branch,omitempty"`
	Tag            string          `json:"tag,omitempty"`
	Commit         string          `json:"commit,omitempty"`
	Descriptor     json.RawMessage `json:"descriptor,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// CreateTriggerRequest — создание trigger.
type CreateTriggerRequest struct {
	Name        string          `json:"name"`
	CronExpr    string          `json:"cron_expr,omitempty"`
	IntervalSec int             `json:"interval_sec,omitempty"`
	Timezone    string          `json:"timezone,omitempty"`
	Branch      string          `json:"branch,omitempty"`
	Descriptor  json.RawMessage `json:"descriptor,omitempty"`
	Enabled     bool            `json:"enabled"`
}

// UpdateTriggerRequest — обновление trigger.
type UpdateTriggerRequest struct {
	Name        *string         `json:"name,omitempty"`
	CronExpr    *string         `json:"cron_expr,omitempty"`
	IntervalSec *int            `json:"interval_sec,omitempty"`
	Timezone    *string         `json:"timezone,omitempty"`
	Branch      *string         `json:"branch,omitempty"`
	Descriptor  json.RawMessage `json:"descriptor,omitempty"`
}

// ListPipelinesOpts — параметры фильтрации pipelines.
type ListPipelinesOpts struct {
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
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Conveyor API.
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

// --- Events ---

// SubmitEvent отправляет триггерное событие и возвращает созданный pipeline.
func (c *Client) SubmitEvent(req SubmitEventRequest) (*PipelineResponse, error) {
	var pipeline PipelineResponse
	err := c.post("/api/v1/events", req, &pipeline)
	return &pipeline, err
}

// --- Pipelines ---

// ListPipelines возвращает список pipelines с фильтрацией.
func (c *Client) ListPipelines(opts ListPipelinesOpts) ([]PipelineResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var pipelines []PipelineResponse
	err := c.list("/api/v1/pipelines", params, &pipelines)
	return pipelines, err
}

// GetPipeline возвращает pipeline по ID.
func (c *Client) GetPipeline(id string) (*PipelineResponse, error) {
	var pipeline PipelineResponse
	err := c.get("/api/v1/pipelines/"+id, &pipeline)
	return &pipeline, err
}

// ListJobs возвращает jobs pipeline в порядке позиций матрицы.
func (c *Client) ListJobs(pipelineID string) ([]JobResponse, error) {
	var jobs []JobResponse
	err := c.list("/api/v1/pipelines/"+pipelineID+"/jobs", nil, &jobs)
	return jobs, err
}

// GetReport возвращает итоговый отчёт pipeline.
func (c *Client) GetReport(pipelineID string) (*ReportResponse, error) {
	var report ReportResponse
	err := c.get("/api/v1/pipelines/"+pipelineID+"/report", &report)
	return &report, err
}

// --- Jobs ---

// GetJob возвращает job по ID.
func (c *Client) GetJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.get("/api/v1/jobs/"+id, &job)
	return &job, err
}

// ListSteps возвращает шаги job в порядке позиций.
func (c *Client) ListSteps(jobID string) ([]StepResponse, error) {
	var steps []StepResponse
	err := c.list("/api/v1/jobs/"+jobID+"/steps", nil, &steps)
	return steps, err
}

// --- Triggers ---

// ListTriggers возвращает все triggers.
func (c *Client) ListTriggers() ([]TriggerResponse, error) {
	var triggers []TriggerResponse
	err := c.list("/api/v1/triggers", nil, &triggers)
	return triggers, err
}

// CreateTrigger создаёт trigger.
func (c *Client) CreateTrigger(req CreateTriggerRequest) (*TriggerResponse, error) {
	var trigger TriggerResponse
	err := c.post("/api/v1/triggers", req, &trigger)
	return &trigger, err
}

// GetTrigger возвращает trigger по ID.
func (c *Client) GetTrigger(id string) (*TriggerResponse, error) {
	var trigger TriggerResponse
	err := c.get("/api/v1/triggers/"+id, &trigger)
	return &trigger, err
}

// UpdateTrigger обновляет trigger.
func (c *Client) UpdateTrigger(id string, req UpdateTriggerRequest) (*TriggerResponse, error) {
	var trigger TriggerResponse
	err := c.put("/api/v1/triggers/"+id, req, &trigger)
	return &trigger, err
}

// DeleteTrigger удаляет trigger.
func (c *Client) DeleteTrigger(id string) error {
	return c.delete("/api/v1/triggers/" + id)
}

// EnableTrigger включает trigger.
func (c *Client) EnableTrigger(id string) (*TriggerResponse, error) {
	var trigger TriggerResponse
	body := map[string]bool{"enabled": true}
	err := c.put("/api/v1/triggers/"+id+"/enabled", body, &trigger)
	return &trigger, err
}

// DisableTrigger выключает trigger.
func (c *Client) DisableTrigger(id string) (*TriggerResponse, error) {
	var trigger TriggerResponse
	body := map[string]bool{"enabled": false}
	err := c.put("/api/v1/triggers/"+id+"/enabled", body, &trigger)
	return &trigger, err
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

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
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

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
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

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
