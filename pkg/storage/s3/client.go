package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/natebrowery/stockroom-backend/pkg/config"
	"github.com/natebrowery/stockroom-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// Client wraps the AWS S3 client plus a presigner for browser uploads.
type Client struct {
	api           *awss3.Client
	presigner     *awss3.PresignClient
	defaultBucket string
	region        string
	endpoint      string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// PresignedUpload carries everything a browser needs to PUT an object directly.
type PresignedUpload struct {
	URL       string
	Method    string
	Headers   http.Header
	ExpiresAt time.Time
}

func NewClient(ctx context.Context, cfg config.S3Config, logg *logger.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket name is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("s3 region is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	api := awss3.NewFromConfig(sdkConfig, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and friends route by path, not subdomain
			o.UsePathStyle = true
		}
	})

	client := &Client{
		api:           api,
		presigner:     awss3.NewPresignClient(api),
		defaultBucket: cfg.Bucket,
		region:        cfg.Region,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
	}

	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("s3 health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "s3 client initialized")
	}

	return client, nil
}

func (c *Client) DefaultBucket() string {
	if c == nil {
		return ""
	}
	return c.defaultBucket
}

// PresignPut returns a time-limited PUT URL for the object key. The caller
// must send the same Content-Type header the URL was signed with.
func (c *Client) PresignPut(ctx context.Context, objectKey, contentType string, expiry time.Duration) (*PresignedUpload, error) {
	if c == nil || c.presigner == nil {
		return nil, errors.New("s3 client not initialized")
	}
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}
	if expiry <= 0 {
		return nil, errors.New("expiry must be positive")
	}

	req, err := c.presigner.PresignPutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.defaultBucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, awss3.WithPresignExpires(expiry))
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w", err)
	}

	headers := http.Header{}
	for name, values := range req.SignedHeader {
		for _, v := range values {
			headers.Add(name, v)
		}
	}
	if contentType != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", contentType)
	}

	return &PresignedUpload{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   headers,
		ExpiresAt: time.Now().Add(expiry).UTC(),
	}, nil
}

// HeadObject confirms the object exists and returns its size.
func (c *Client) HeadObject(ctx context.Context, objectKey string) (int64, error) {
	if c == nil || c.api == nil {
		return 0, errors.New("s3 client not initialized")
	}
	out, err := c.api.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(c.defaultBucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return 0, fmt.Errorf("head object %q: %w", objectKey, err)
	}
	if out.ContentLength == nil {
		return 0, nil
	}
	return *out.ContentLength, nil
}

// ObjectURL builds the public URL for a stored object.
func (c *Client) ObjectURL(objectKey string) string {
	if c == nil {
		return ""
	}
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.defaultBucket, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.defaultBucket, c.region, objectKey)
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("s3 client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err := c.api.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(c.defaultBucket),
	})
	if err != nil {
		return fmt.Errorf("head bucket %q: %w", c.defaultBucket, err)
	}
	return nil
}

func (c *Client) Close() error {
	return nil
}
