package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/niksmo/sneakers/pkg/retry"
)

var _ Slot = (*S3Slot)(nil)

const defaultS3Region = "us-east-1"

type S3Options struct {
	Bucket string
	Region string
	// Endpoint is set for S3 compatible services such as MinIO.
	Endpoint  string
	PathStyle bool
	// Prefix is prepended to every object key.
	Prefix string
	// Static credentials, the default AWS chain is used when empty.
	AccessKeyID     string
	SecretAccessKey string
}

type s3API interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Slot stores every key as an object of a single bucket.
type S3Slot struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Slot checks that the bucket is reachable before returning.
//
// optFns are applied to the client options after o.
func NewS3Slot(
	ctx context.Context,
	o S3Options,
	ping retry.Policy,
	optFns ...func(*s3.Options),
) (*S3Slot, error) {
	const op = "NewS3Slot"

	if o.Bucket == "" {
		return nil, fmt.Errorf("%s: bucket is required", op)
	}

	region := o.Region
	if region == "" {
		region = defaultS3Region
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if o.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				o.AccessKeyID, o.SecretAccessKey, "",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, append([]func(*s3.Options){
		func(so *s3.Options) {
			so.UsePathStyle = o.PathStyle
			if o.Endpoint != "" {
				so.BaseEndpoint = aws.String(o.Endpoint)
			}
			so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			so.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		},
	}, optFns...)...)

	s := &S3Slot{client: client, bucket: o.Bucket, prefix: o.Prefix}
	if err := s.ping(ctx, ping); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (s *S3Slot) ping(ctx context.Context, p retry.Policy) error {
	const op = "S3Slot.ping"

	err := retry.Do(ctx, p, func() error {
		_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(s.bucket),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: bucket %q unavailable: %w", op, s.bucket, err)
	}
	slog.Info("bucket is available", "op", op, "bucket", s.bucket)
	return nil
}

func (s *S3Slot) Read(ctx context.Context, key string) ([]byte, error) {
	const op = "S3Slot.Read"

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if isNotFound(err) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *S3Slot) Write(ctx context.Context, key string, data []byte) error {
	const op = "S3Slot.Write"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *S3Slot) Close() error { return nil }

func (s *S3Slot) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) &&
		respErr.HTTPStatusCode() == http.StatusNotFound
}
