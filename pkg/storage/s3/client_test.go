package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/natebrowery/stockroom-backend/pkg/config"
)

// sdkConfigForTest builds an offline aws.Config with static credentials so
// presign tests never reach the network.
func sdkConfigForTest(cfg config.S3Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
}

func testClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.S3Config{
		Region:          "us-east-1",
		Bucket:          "stockroom-media",
		AccessKeyID:     "test-access",
		SecretAccessKey: "test-secret",
	}

	loadOpts, err := sdkConfigForTest(cfg)
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}

	api := awss3.NewFromConfig(loadOpts)
	return &Client{
		api:           api,
		presigner:     awss3.NewPresignClient(api),
		defaultBucket: cfg.Bucket,
		region:        cfg.Region,
	}
}

func TestPresignPutSuccess(t *testing.T) {
	t.Parallel()

	client := testClient(t)

	upload, err := client.PresignPut(context.Background(), "media/product/file.png", "image/png", 5*time.Minute)
	if err != nil {
		t.Fatalf("PresignPut returned error: %v", err)
	}

	if upload.Method != "PUT" {
		t.Fatalf("unexpected method %q", upload.Method)
	}

	parsed, err := url.Parse(upload.URL)
	if err != nil {
		t.Fatalf("parse presigned url: %v", err)
	}
	if !strings.Contains(parsed.Host, "stockroom-media") {
		t.Fatalf("bucket missing from host %q", parsed.Host)
	}
	if !strings.Contains(parsed.Path, "media/product/file.png") {
		t.Fatalf("object key missing from path %q", parsed.Path)
	}

	values := parsed.Query()
	if values.Get("X-Amz-Signature") == "" {
		t.Fatalf("signature missing")
	}
	if values.Get("X-Amz-Expires") == "" {
		t.Fatalf("expires missing")
	}

	if upload.ExpiresAt.Before(time.Now()) {
		t.Fatalf("expiry already passed: %s", upload.ExpiresAt)
	}
}

func TestPresignPutValidation(t *testing.T) {
	t.Parallel()

	client := testClient(t)

	if _, err := client.PresignPut(context.Background(), "", "image/png", time.Minute); err == nil {
		t.Fatalf("expected error for empty object key")
	}
	if _, err := client.PresignPut(context.Background(), "media/file.png", "image/png", 0); err == nil {
		t.Fatalf("expected error for non-positive expiry")
	}

	var nilClient *Client
	if _, err := nilClient.PresignPut(context.Background(), "media/file.png", "image/png", time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestObjectURL(t *testing.T) {
	t.Parallel()

	client := &Client{defaultBucket: "stockroom-media", region: "us-east-1"}
	got := client.ObjectURL("media/product/file.png")
	want := "https://stockroom-media.s3.us-east-1.amazonaws.com/media/product/file.png"
	if got != want {
		t.Fatalf("unexpected object url %q, want %q", got, want)
	}

	client.endpoint = "http://localhost:9000"
	got = client.ObjectURL("media/product/file.png")
	want = "http://localhost:9000/stockroom-media/media/product/file.png"
	if got != want {
		t.Fatalf("unexpected endpoint url %q, want %q", got, want)
	}
}
