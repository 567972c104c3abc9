package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	cfg "github.com/dafibh/envelope/envelope-backend/internal/config"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentUploads = 4

// Ensure S3SnapshotRepository implements SnapshotRepository
var _ SnapshotRepository = (*S3SnapshotRepository)(nil)

// S3SnapshotRepository writes budget snapshots to S3 or an S3-compatible store
type S3SnapshotRepository struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3SnapshotRepository creates a new S3 snapshot repository
func NewS3SnapshotRepository(ctx context.Context, s3cfg cfg.S3Config) (*S3SnapshotRepository, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if s3cfg.Endpoint != "" {
		// MinIO and LocalStack need path-style addressing
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	repo := &S3SnapshotRepository{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: s3cfg.Bucket,
		prefix: s3cfg.Prefix,
	}
	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// ensureBucket creates the snapshot bucket on first use
func (r *S3SnapshotRepository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	switch {
	case err == nil:
		return nil
	case !isMissingBucket(err):
		return fmt.Errorf("check snapshot bucket %s: %w", r.bucket, err)
	}

	if _, err := r.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(r.bucket)}); err != nil {
		return fmt.Errorf("create snapshot bucket %s: %w", r.bucket, err)
	}
	return nil
}

func isMissingBucket(err error) bool {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	return errors.As(err, &notFound) || errors.As(err, &noSuchBucket)
}

// Write uploads every object under <prefix>/<snapshotID>/ and returns that path.
// Objects are uploaded concurrently; the first failure cancels the rest.
func (r *S3SnapshotRepository) Write(ctx context.Context, snapshotID string, objects []SnapshotObject) (string, error) {
	base := SnapshotPrefix(r.prefix, snapshotID)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)
	for _, obj := range objects {
		obj := obj
		key := path.Join(base, obj.Name)
		g.Go(func() error {
			_, err := r.client.PutObject(gctx, &s3.PutObjectInput{
				Bucket:        aws.String(r.bucket),
				Key:           aws.String(key),
				Body:          bytes.NewReader(obj.Body),
				ContentType:   aws.String(obj.ContentType),
				ContentLength: aws.Int64(int64(len(obj.Body))),
			})
			if err != nil {
				return fmt.Errorf("failed to upload %s: %w", key, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return base, nil
}
