// Package uploader stores rendered template artifacts in the template
// bucket so CloudFormation can fetch them by URL during stack creation.
package uploader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/errgroup"

	"github.com/envstack/envstack/internal/compose"
)

// S3API is the subset of the S3 client the uploader depends on.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes template bodies to a single bucket with a fixed canned
// ACL.
type Uploader struct {
	client S3API
	bucket string
	acl    s3types.ObjectCannedACL
}

// New creates an Uploader. An empty acl leaves the bucket default in place.
func New(client S3API, bucket, acl string) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		acl:    s3types.ObjectCannedACL(acl),
	}
}

// Bucket returns the target bucket name.
func (u *Uploader) Bucket() string {
	return u.bucket
}

// Upload stores one template body under key.
func (u *Uploader) Upload(ctx context.Context, key string, body []byte) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}
	if u.acl != "" {
		input.ACL = u.acl
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload template to s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

// UploadAll stores every queued artifact, running the uploads concurrently
// and returning the first failure.
func (u *Uploader) UploadAll(ctx context.Context, artifacts []compose.Artifact) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, artifact := range artifacts {
		g.Go(func() error {
			return u.Upload(ctx, artifact.Key, artifact.Body)
		})
	}
	return g.Wait()
}
