package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/snapcal/snapcal-cli/internal/model"
)

// Analyze uploads an image for AI nutrition analysis. The upload gets its
// own, longer timeout; hitting it maps to status 408. Uploads are throttled
// so repeated snaps cannot hammer the vision endpoint.
func (c *Client) Analyze(ctx context.Context, credential, imageName string, imageData []byte, prompt string) (model.AnalysisResult, error) {
	if c.analyzeLimiter != nil {
		if err := c.analyzeLimiter.Wait(ctx); err != nil {
			return model.AnalysisResult{}, &Error{Message: err.Error()}
		}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", imageName)
	if err != nil {
		return model.AnalysisResult{}, &Error{Message: fmt.Sprintf("build upload: %v", err)}
	}
	if _, err := part.Write(imageData); err != nil {
		return model.AnalysisResult{}, &Error{Message: fmt.Sprintf("build upload: %v", err)}
	}
	if prompt != "" {
		if err := writer.WriteField("prompt", prompt); err != nil {
			return model.AnalysisResult{}, &Error{Message: fmt.Sprintf("build upload: %v", err)}
		}
	}
	if err := writer.Close(); err != nil {
		return model.AnalysisResult{}, &Error{Message: fmt.Sprintf("build upload: %v", err)}
	}

	timeout := c.AnalyzeTimeout
	if timeout <= 0 {
		timeout = defaultAnalyzeTimeout
	}
	uploadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(uploadCtx, http.MethodPost, c.BaseURL+"/analyze-food", &buf)
	if err != nil {
		return model.AnalysisResult{}, &Error{Message: err.Error()}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	// The analyze client deliberately bypasses the short default timeout.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if errors.Is(uploadCtx.Err(), context.DeadlineExceeded) {
			return model.AnalysisResult{}, &Error{
				Message: fmt.Sprintf("analysis timed out after %s", timeout),
				Status:  http.StatusRequestTimeout,
			}
		}
		return model.AnalysisResult{}, &Error{Message: msgUnreachable}
	}
	defer resp.Body.Close()

	requestID := resp.Header.Get("X-Request-ID")
	c.Log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("analyze")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.AnalysisResult{}, &Error{Message: msgUnreachable}
	}
	if resp.StatusCode >= 400 {
		return model.AnalysisResult{}, newStatusError(resp.StatusCode, raw)
	}

	var out model.AnalysisResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.AnalysisResult{}, &Error{Message: fmt.Sprintf("malformed server response: %v", err), Status: resp.StatusCode}
	}
	out.RequestID = requestID
	return out, nil
}

// Health checks backend availability with a short timeout.
func (c *Client) Health(ctx context.Context) (model.HealthStatus, error) {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out model.HealthStatus
	if err := c.get(healthCtx, "/health", "", &out); err != nil {
		return model.HealthStatus{}, err
	}
	if strings.TrimSpace(out.Status) == "" {
		out.Status = "unknown"
	}
	return out, nil
}
