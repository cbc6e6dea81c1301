package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/synthlab/synthlink/internal/config"
	"github.com/synthlab/synthlink/internal/httpx"
	"github.com/synthlab/synthlink/internal/logging"
	"github.com/synthlab/synthlink/internal/models"
)

// retryLogger implements the retryablehttp.LeveledLogger interface,
// forwarding retry warnings through the structured logger.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Msgf("retry: %s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Msgf("retry: %s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Client talks to the synthesis service.
type Client struct {
	httpClient *nethttp.Client // retry-wrapped, for control-plane calls
	rawClient  *nethttp.Client // plain, for uploads (retried at a higher level)
	baseURL    string
	apiKey     string
	logger     *logging.Logger
}

// NewClient creates a new synthesis service client.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	httpClient, err := httpx.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	// Wrap with retry logic. Kept short: during polling the status loop has
	// its own consecutive-error accounting, and transient failures are
	// expected to surface there.
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = &retryLogger{log: logger}

	return &Client{
		httpClient: retryClient.StandardClient(),
		rawClient:  httpClient,
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     logger,
	}, nil
}

// doRequest performs an HTTP request with authentication headers.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("method", method).Str("path", path).Err(err).Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// Health checks service reachability via GET /health. Used as a pre-flight
// check so a run fails fast on a bad URL instead of inside phase 2.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		return fmt.Errorf("service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// UploadDataset uploads a dataset file as a multipart form (field "file")
// to POST /dataset/upload. The body reader may be wrapped for progress
// reporting by passing a non-nil wrap function.
func (c *Client) UploadDataset(ctx context.Context, filePath string, wrap func(r io.Reader, size int64) io.Reader) (*models.Dataset, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset file: %w", err)
	}

	var dataset *models.Dataset
	// Multipart bodies cannot be rewound by retryablehttp, so uploads are
	// retried whole at this level instead.
	err = httpx.ExecuteWithRetry(ctx, httpx.DefaultRetryConfig(), func() error {
		f, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer f.Close()

		var src io.Reader = f
		if wrap != nil {
			src = wrap(f, info.Size())
		}

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			return fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, src); err != nil {
			return fmt.Errorf("failed to read dataset file: %w", err)
		}
		if err := mw.Close(); err != nil {
			return fmt.Errorf("failed to finalize multipart body: %w", err)
		}

		req, err := nethttp.NewRequestWithContext(ctx, "POST", c.baseURL+"/dataset/upload", &buf)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Token "+c.apiKey)
		}

		resp, err := c.rawClient.Do(req)
		if err != nil {
			return fmt.Errorf("upload request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("upload dataset failed: status %d: %s", resp.StatusCode, string(body))
		}

		var ds models.Dataset
		if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
			return fmt.Errorf("failed to decode upload response: %w", err)
		}
		dataset = &ds
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dataset.DatasetID == "" {
		return nil, fmt.Errorf("upload response missing dataset_id")
	}

	return dataset, nil
}

// TrainModel starts a training job via POST /model/train and returns the
// job identifier. A non-success response or a missing identifier is an
// error; the caller treats either as a submission failure.
func (c *Client) TrainModel(ctx context.Context, req models.TrainRequest) (string, error) {
	resp, err := c.doRequest(ctx, "POST", "/model/train", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK && resp.StatusCode != nethttp.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("train request failed: status %d: %s", resp.StatusCode, string(body))
	}

	var trainResp models.TrainResponse
	if err := json.NewDecoder(resp.Body).Decode(&trainResp); err != nil {
		return "", fmt.Errorf("failed to decode train response: %w", err)
	}

	if trainResp.JobID == "" {
		return "", ErrMissingJobID
	}

	return trainResp.JobID, nil
}

// GetJobStatus fetches the current status of a training job via
// GET /model/status/{job_id}.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	if jobID == "" {
		return nil, ErrEmptyJobID
	}

	path := fmt.Sprintf("/model/status/%s", url.PathEscape(jobID))

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get job status failed: status %d: %s", resp.StatusCode, string(body))
	}

	var status models.JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}

	return &status, nil
}

// Generate requests count synthetic records from a trained job via
// GET /model/generate/{job_id}?count={n}. The response body carries the
// generated data, so this call is synchronous; callers cap count before
// calling.
func (c *Client) Generate(ctx context.Context, jobID string, count int) (*models.GenerateResult, error) {
	if jobID == "" {
		return nil, ErrEmptyJobID
	}

	path := fmt.Sprintf("/model/generate/%s?count=%d", url.PathEscape(jobID), count)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generate request failed: status %d: %s", resp.StatusCode, string(body))
	}

	var result models.GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode generate response: %w", err)
	}

	return &result, nil
}
