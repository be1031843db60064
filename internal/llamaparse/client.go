package llamaparse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL      = "https://api.cloud.llamaindex.ai"
	DefaultTimeout      = 2000 * time.Second
	DefaultPollInterval = time.Second
)

const (
	JobPending  = "PENDING"
	JobSuccess  = "SUCCESS"
	JobError    = "ERROR"
	JobCanceled = "CANCELED"
)

var (
	ErrMissingAPIKey = errors.New("llamaparse: API key is required")
	ErrEmptyDocument = errors.New("llamaparse: document is empty")
	ErrJobFailed     = errors.New("llamaparse: parse job failed")
	ErrNoContent     = errors.New("llamaparse: no content was extracted from the document")
)

// Client talks to the hosted LlamaParse parsing API.
type Client struct {
	client *resty.Client
}

type ClientConfig struct {
	APIKey  string
	BaseURL string // defaults to DefaultBaseURL
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.APIKey).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			return err == nil && res.StatusCode() >= 500
		})

	return &Client{client: client}, nil
}

// UploadOptions are the parsing options sent with a document upload.
type UploadOptions struct {
	Language       string // document language hint; autodetected when empty
	PremiumMode    bool
	ContinuousMode bool
}

type uploadResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

// Upload submits a document for parsing and returns the job id.
func (c *Client) Upload(ctx context.Context, name string, contents []byte, opts UploadOptions) (string, error) {
	if len(contents) == 0 {
		return "", ErrEmptyDocument
	}

	fields := map[string]string{}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.PremiumMode {
		fields["premium_mode"] = "true"
	}
	if opts.ContinuousMode {
		fields["continuous_mode"] = "true"
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(contents)).
		SetMultipartFormData(fields).
		Post("/api/parsing/upload")
	if err != nil {
		return "", fmt.Errorf("llamaparse: upload request failed: %w", err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("llamaparse: upload returned status %d: %s", res.StatusCode(), res.String())
	}

	var upload uploadResponse
	if err := json.Unmarshal(res.Body(), &upload); err != nil {
		return "", fmt.Errorf("llamaparse: error parsing upload response: %w", err)
	}
	if upload.Id == "" {
		return "", fmt.Errorf("llamaparse: upload response is missing a job id: %s", res.String())
	}

	slog.Debug("document uploaded for parsing", "name", name, "job_id", upload.Id, "status", upload.Status)
	return upload.Id, nil
}

type jobStatusResponse struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// JobStatus returns the current status of a parse job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (string, error) {
	res, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/parsing/job/%s", jobID))
	if err != nil {
		return "", fmt.Errorf("llamaparse: status request failed: %w", err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("llamaparse: status returned status %d: %s", res.StatusCode(), res.String())
	}

	var status jobStatusResponse
	if err := json.Unmarshal(res.Body(), &status); err != nil {
		return "", fmt.Errorf("llamaparse: error parsing status response: %w", err)
	}

	if status.Status == JobError || status.Status == JobCanceled {
		return status.Status, fmt.Errorf("%w: job %s is %s (%s: %s)",
			ErrJobFailed, jobID, status.Status, status.ErrorCode, status.ErrorMessage)
	}

	return status.Status, nil
}

// Result fetches the parsed content of a finished job in the given format.
// For FormatJSON the full result document is returned as raw JSON; markdown
// and text results are unwrapped from the response envelope.
func (c *Client) Result(ctx context.Context, jobID string, format Format) (string, error) {
	res, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/api/parsing/job/%s/result/%s", jobID, format))
	if err != nil {
		return "", fmt.Errorf("llamaparse: result request failed: %w", err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("llamaparse: result returned status %d: %s", res.StatusCode(), res.String())
	}

	if format == FormatJSON {
		return res.String(), nil
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(res.Body(), &result); err != nil {
		return "", fmt.Errorf("llamaparse: error parsing result response: %w", err)
	}

	var content string
	if raw, ok := result[string(format)]; ok {
		if err := json.Unmarshal(raw, &content); err != nil {
			return "", fmt.Errorf("llamaparse: unexpected %s result payload: %w", format, err)
		}
	}
	if content == "" {
		return "", ErrNoContent
	}

	return content, nil
}

// ParseOptions control a full upload-poll-fetch cycle.
type ParseOptions struct {
	UploadOptions

	PollInterval time.Duration // defaults to DefaultPollInterval
	Timeout      time.Duration // defaults to DefaultTimeout
}

// Parse uploads a document, waits for the parse job to finish, and returns
// the result in the requested format.
func (c *Client) Parse(ctx context.Context, name string, contents []byte, format Format, opts ParseOptions) (string, error) {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	jobID, err := c.Upload(ctx, name, contents, opts.UploadOptions)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("llamaparse: waiting for job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}

		status, err := c.JobStatus(ctx, jobID)
		if err != nil {
			if errors.Is(err, ErrJobFailed) {
				return "", err
			}
			// Transient status failures are retried until the deadline.
			slog.Debug("parse job status check failed, retrying", "job_id", jobID, "error", err)
			continue
		}

		if status != JobSuccess {
			slog.Debug("parse job still running", "job_id", jobID, "status", status)
			continue
		}

		return c.Result(ctx, jobID, format)
	}
}
