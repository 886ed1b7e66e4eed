package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 serves the payload store contract from an S3-compatible bucket
// (AWS or MinIO with a base endpoint override). The object key is the
// storage locator.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 creates an S3 client with static credentials. An empty endpoint
// uses the default AWS resolution; a non-empty one targets MinIO-style
// deployments with path-style addressing.
func NewS3(ctx context.Context, region, endpoint, bucket, accessKey, secretKey string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, bucket: bucket}, nil
}

// Put uploads the payload under name. The returned locator is the object
// key itself.
func (s *S3) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %v", ErrUpstream, name, err)
	}
	return name, nil
}

// Get fetches the payload stored under the locator key.
func (s *S3) Get(ctx context.Context, locator string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get object %s: %v", ErrUpstream, locator, err)
	}

	return &Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}
