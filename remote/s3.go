package remote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/johnnyasantoss/mediadc-massdedupe/config"
	"golang.org/x/time/rate"

	s3config "github.com/aws/aws-sdk-go-v2/config"
)

var _ RemoteProvider = (*S3Remote)(nil)

// I created an interface so the S3 client can be tested by providing a custom implementation.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Remote struct {
	client           S3API
	config           *config.S3Config
	common           *config.CommonRemoteConfig
	limiter          *rate.Limiter
	requestCount     int64      // Total requests made
	lastRequestCount int64      // Request count at last RPS calculation
	lastRPS          int64      // Last calculated RPS
	lastRPSTime      time.Time  // Time of last RPS calculation
	mu               sync.Mutex // Protects RPS calculation fields
}

func NewS3Remote(cfg *config.S3Config, common *config.CommonRemoteConfig) (*S3Remote, error) {
	ctx := context.TODO()

	// Apply defaults to common config
	common.ApplyDefaults()

	// default 0
	var limiter *rate.Limiter
	if common.MaxRPS > 0 {
		// Create rate limiter
		limiter = rate.NewLimiter(rate.Limit(common.MaxRPS), int(common.MaxRPS)) // burst = MaxRPS
	}

	// For S3-compatible storage, region is often just a placeholder
	// Use provided region or default to "us-east-1"
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	s3cfg, err := s3config.LoadDefaultConfig(
		ctx,
		s3config.WithRegion(region),
		s3config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		// Suppress AWS SDK logging warnings about missing checksums
		s3config.WithClientLogMode(0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	client := s3.NewFromConfig(s3cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		// Use path-style addressing for S3-compatible storage
		o.UsePathStyle = true
	})

	return &S3Remote{
		client:      client,
		config:      cfg,
		common:      common,
		limiter:     limiter,
		lastRPSTime: time.Now(),
	}, nil
}

// Stat returns the metadata of the object at key via HeadObject.
func (c *S3Remote) Stat(ctx context.Context, key string) (*ObjectMeta, error) {
	var out *s3.HeadObjectOutput
	err := c.callWithRetry(ctx, func(ctx context.Context) error {
		resp, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(c.config.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	meta := &ObjectMeta{}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		meta.ModTime = out.LastModified.Unix()
	}
	if out.ETag != nil {
		meta.Etag = *out.ETag
	}
	return meta, nil
}

// Delete removes the object at key. A missing object counts as success.
func (c *S3Remote) Delete(ctx context.Context, key string) error {
	err := c.callWithRetry(ctx, func(ctx context.Context) error {
		_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(c.config.Bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil // Object already doesn't exist
	}
	return err
}

// isNotFound classifies the S3 errors that mean "no such object".
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}

// callWithRetry executes the provided function with retry logic, timeout, and RPS limiting.
// Not-found responses short-circuit to ErrNotFound without retrying.
func (c *S3Remote) callWithRetry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	retries := c.common.MaxRetries
	if retries == 0 {
		retries = 1
	}
	for i := 0; i < retries; i++ {
		// Rate limiting: wait for token before each attempt
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter error: %w", err)
			}
		}
		atomic.AddInt64(&c.requestCount, 1)

		reqCtx, cancel := context.WithTimeout(ctx, time.Duration(c.common.TimeoutSeconds)*time.Second)
		err := fn(reqCtx)
		cancel()
		if err == nil {
			return nil
		}
		if isNotFound(err) {
			return ErrNotFound
		}

		lastErr = err

		// Exponential backoff before next retry
		backoff := time.Duration(math.Pow(2, float64(i))) * 200 * time.Millisecond
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("all retries failed: %w", lastErr)
}

// GetCurrentRPS calculates and returns the current requests per second rate
// This method is thread-safe and can be called periodically for monitoring
func (c *S3Remote) GetCurrentRPS() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(c.lastRPSTime).Seconds()

	// Only recalculate if at least 1 second has passed
	if elapsed >= 1.0 {
		currentCount := atomic.LoadInt64(&c.requestCount)
		requestsDelta := currentCount - c.lastRequestCount

		// Calculate RPS based on the delta and elapsed time
		c.lastRPS = int64(float64(requestsDelta) / elapsed)
		c.lastRequestCount = currentCount
		c.lastRPSTime = now
	}

	return c.lastRPS
}

// Close is a no-op; the underlying HTTP client needs no teardown.
func (c *S3Remote) Close() error {
	return nil
}
