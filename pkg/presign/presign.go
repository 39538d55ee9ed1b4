// Package presign implements the remote collaborators that turn object URLs
// into time-limited presigned URLs.
package presign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Presigner turns an object URL into a presigned URL valid for expiration
type Presigner interface {
	Presign(ctx context.Context, objectURL string, expiration time.Duration) (string, error)
}

// PresignerFunc adapts a function to Presigner
type PresignerFunc func(ctx context.Context, objectURL string, expiration time.Duration) (string, error)

func (f PresignerFunc) Presign(ctx context.Context, objectURL string, expiration time.Duration) (string, error) {
	return f(ctx, objectURL, expiration)
}

const (
	ProviderS3   = "s3"
	ProviderHTTP = "http"
	ProviderNone = "none"
)

var (
	// ErrInvalidObjectURL is returned for URLs that name no bucket and key
	ErrInvalidObjectURL = errors.New("invalid object URL")
	// ErrDisabled is returned by the presigner of the "none" provider
	ErrDisabled = errors.New("presigning is disabled")
)

// Config selects and configures a presigner implementation
type Config struct {
	Provider   string
	Region     string
	Endpoint   string
	ServiceURL string
	Timeout    time.Duration
	Retries    uint64
	RetryBase  time.Duration
}

// New builds the presigner named by cfg.Provider, wrapped with retries when
// cfg.Retries is positive.
func New(ctx context.Context, cfg Config) (Presigner, error) {
	var (
		p   Presigner
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderS3, "":
		p, err = NewS3Presigner(ctx, S3Options{Region: cfg.Region, Endpoint: cfg.Endpoint})
	case ProviderHTTP:
		p, err = NewHTTPPresigner(cfg.ServiceURL, cfg.Timeout)
	case ProviderNone:
		p = disabled{}
	default:
		return nil, fmt.Errorf("unknown presign provider %q (supported: s3, http, none)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Retries > 0 {
		p = WithRetry(p, cfg.Retries, cfg.RetryBase)
	}
	return p, nil
}

type disabled struct{}

func (disabled) Presign(context.Context, string, time.Duration) (string, error) {
	return "", ErrDisabled
}
