package presign

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultHTTPTimeout = 30 * time.Second

type presignRequest struct {
	URL               string `json:"url"`
	ExpirationMinutes int    `json:"expiration_minutes"`
}

type presignResponse struct {
	URL string `json:"url"`
}

type serviceError struct {
	Message string `json:"message"`
}

// StatusError is returned when the presigning service answers with an error status
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("presign service error: %s (status %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("presign service error (status %d)", e.Code)
}

// Temporary reports whether retrying the request may succeed
func (e *StatusError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError ||
		e.Code == http.StatusTooManyRequests ||
		e.Code == http.StatusRequestTimeout
}

// HTTPPresigner delegates presigning to a remote service
type HTTPPresigner struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPPresigner(serviceURL string, timeout time.Duration) (*HTTPPresigner, error) {
	if serviceURL == "" {
		return nil, errors.New("presign service URL is required")
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &HTTPPresigner{client: client, endpoint: serviceURL}, nil
}

func (p *HTTPPresigner) Presign(ctx context.Context, objectURL string, expiration time.Duration) (string, error) {
	result := &presignResponse{}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(presignRequest{URL: objectURL, ExpirationMinutes: int(expiration / time.Minute)}).
		SetResult(result).
		SetError(&serviceError{}).
		Post(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("presign request failed: %w", err)
	}
	if resp.IsError() {
		statusErr := &StatusError{Code: resp.StatusCode()}
		if apiErr, ok := resp.Error().(*serviceError); ok && apiErr != nil {
			statusErr.Message = apiErr.Message
		}
		return "", statusErr
	}
	if result.URL == "" {
		return "", errors.New("presign service returned an empty url")
	}
	return result.URL, nil
}
