package presign

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectLocation is a bucket/key pair parsed from an object URL
type ObjectLocation struct {
	Bucket string
	Key    string
	Region string
}

// ParseObjectURL accepts s3://bucket/key, virtual-hosted style
// (bucket.s3[.region].amazonaws.com/key) and path-style
// (s3[.region].amazonaws.com/bucket/key or any custom endpoint) URLs.
func ParseObjectURL(raw string) (ObjectLocation, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ObjectLocation{}, fmt.Errorf("%w: %v", ErrInvalidObjectURL, err)
	}
	path := strings.TrimPrefix(u.Path, "/")
	var loc ObjectLocation
	switch {
	case u.Scheme == "s3":
		loc = ObjectLocation{Bucket: u.Host, Key: path}
	case u.Scheme == "http" || u.Scheme == "https":
		loc = parseHTTPObjectURL(u.Hostname(), path)
	default:
		return ObjectLocation{}, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidObjectURL, raw)
	}
	if loc.Bucket == "" || loc.Key == "" {
		return ObjectLocation{}, fmt.Errorf("%w: %q names no bucket and key", ErrInvalidObjectURL, raw)
	}
	return loc, nil
}

func parseHTTPObjectURL(host, path string) ObjectLocation {
	if idx := strings.Index(host, ".s3"); idx > 0 && strings.HasSuffix(host, ".amazonaws.com") {
		return ObjectLocation{
			Bucket: host[:idx],
			Key:    path,
			Region: regionFromHost(host[idx+1:]),
		}
	}
	bucket, key, _ := strings.Cut(path, "/")
	loc := ObjectLocation{Bucket: bucket, Key: key}
	if strings.HasSuffix(host, ".amazonaws.com") {
		loc.Region = regionFromHost(host)
	}
	return loc
}

// regionFromHost reads the region out of s3.<region>.amazonaws.com or s3-<region>.amazonaws.com
func regionFromHost(host string) string {
	host = strings.TrimSuffix(host, ".amazonaws.com")
	switch {
	case strings.HasPrefix(host, "s3."):
		return strings.TrimPrefix(host, "s3.")
	case strings.HasPrefix(host, "s3-"):
		return strings.TrimPrefix(host, "s3-")
	default:
		return ""
	}
}

type S3Options struct {
	Region   string
	Endpoint string
}

// S3Presigner presigns GetObject requests with the AWS SDK
type S3Presigner struct {
	client *s3.PresignClient
}

// NewS3Presigner loads the default AWS credential chain
func NewS3Presigner(ctx context.Context, opts S3Options) (*S3Presigner, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3PresignerFromConfig(cfg, opts), nil
}

func NewS3PresignerFromConfig(cfg aws.Config, opts S3Options) *S3Presigner {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Presigner{client: s3.NewPresignClient(client)}
}

func (p *S3Presigner) Presign(ctx context.Context, objectURL string, expiration time.Duration) (string, error) {
	loc, err := ParseObjectURL(objectURL)
	if err != nil {
		return "", err
	}
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiration
		if loc.Region != "" {
			o.ClientOptions = append(o.ClientOptions, func(so *s3.Options) {
				so.Region = loc.Region
			})
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign s3://%s/%s: %w", loc.Bucket, loc.Key, err)
	}
	return req.URL, nil
}
