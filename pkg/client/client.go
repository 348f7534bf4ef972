// Package client implements the Go client for the remote compound
// prediction service.  The service classifies each submitted SMILES string
// as an inhibitor or a decoy and, for inhibitors, returns a potency class
// and a predicted IC50 value.
//
// The client performs a single HTTP call per Predict invocation: failed
// requests surface immediately to the caller, which must resubmit manually.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/molscreen/molscreen/pkg/errors"
)

// Version is reported in the User-Agent header.
const Version = "0.1.0"

// predictPath is the prediction endpoint, relative to the base URL.
const predictPath = "/api/predict"

// MaxBatch is the largest SMILES batch the service accepts per request.
const MaxBatch = 20

// Logger is the minimal logging contract the client depends on.  The
// zero-value client logs nothing.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client is the prediction-service client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     Logger
}

// Prediction is a single per-compound prediction record.  PotencyClass and
// IC50 are nil for decoys.
type Prediction struct {
	SMILES         string   `json:"smiles"`
	Classification string   `json:"classification"` // "inhibitor" | "decoy"
	PotencyClass   *int     `json:"class"`
	IC50           *float64 `json:"ic50"`
}

type predictRequest struct {
	SMILES []string `json:"smiles"`
}

type predictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// APIError is a non-2xx response from the prediction service whose body
// carried a JSON error message.  Message holds the service's own text,
// verbatim, so callers can display it unchanged.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prediction service: %s (HTTP %d) [request_id=%s]", e.Message, e.StatusCode, e.RequestID)
}

// IsServerError reports whether the upstream failure was a 5xx.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// NewClient constructs a prediction-service client for the given base URL.
// By default there is no request timeout, matching the historical client
// behavior; use WithTimeout to bound calls.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("prediction service base URL must not be empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "invalid prediction service base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.Newf(errors.CodeInvalidParam,
			"prediction service base URL scheme must be http or https, got %q", parsed.Scheme)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  fmt.Sprintf("molscreen-client/%s", Version),
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Predict submits a batch of SMILES strings and returns one prediction per
// compound.  The batch must be non-empty and at most MaxBatch entries; both
// bounds are checked before any network traffic.
//
// There is no retry and no client-imposed timeout beyond the one configured
// at construction; ctx cancellation aborts the request.
func (c *Client) Predict(ctx context.Context, smiles []string) ([]Prediction, error) {
	if len(smiles) == 0 {
		return nil, errors.New(errors.CodeInputEmpty, "no input provided")
	}
	if len(smiles) > MaxBatch {
		return nil, errors.Newf(errors.CodeInputTooManyCompounds,
			"too many compounds: maximum %d allowed, got %d", MaxBatch, len(smiles))
	}

	body, err := json.Marshal(predictRequest{SMILES: smiles})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode prediction request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build prediction request")
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("prediction request failed: %v", err)
		return nil, errors.Wrap(err, errors.CodePredictionUnavailable, "prediction service unreachable")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePredictionBadResponse, "failed to read prediction response")
	}

	c.logger.Debugf("POST %s %d (%v) batch=%d", predictPath, resp.StatusCode, time.Since(start), len(smiles))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.decodeError(resp.StatusCode, respBody, requestID)
	}

	var out predictResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errors.Wrap(err, errors.CodePredictionBadResponse,
			"prediction service returned a malformed response")
	}
	return out.Predictions, nil
}

// decodeError turns a non-2xx response into a typed error.  When the body
// is the documented {"error": "..."} shape the upstream message is carried
// verbatim; otherwise the failure is reported as a malformed response.
func (c *Client) decodeError(status int, body []byte, requestID string) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		apiErr := &APIError{StatusCode: status, Message: er.Error, RequestID: requestID}
		return errors.New(errors.CodePredictionRejected, er.Error).WithCause(apiErr)
	}
	return errors.Newf(errors.CodePredictionBadResponse,
		"prediction service returned HTTP %d with an unreadable error body", status)
}
