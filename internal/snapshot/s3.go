package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"fv-go/internal/config"
	"fv-go/internal/fv"
)

// S3API is the subset of the S3 client used by S3Store. *s3.Client satisfies it.
type S3API interface {
	manager.UploadAPIClient

	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store keeps snapshots as objects named <prefix>/<key> in one bucket.
type S3Store struct {
	client   S3API
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Store creates a store on top of an existing client.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// NewS3StoreFromConfig builds an S3 client from the default AWS credential
// chain, overridden by static keys, region and endpoint when configured.
func NewS3StoreFromConfig(cfg config.StoreConfig) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

// EnsureRoot checks that the bucket exists and is reachable.
func (s *S3Store) EnsureRoot() error {
	_, err := s.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	return nil
}

// WriteSnapshot uploads r as <prefix>/<key>. Large bodies go through multipart upload.
func (s *S3Store) WriteSnapshot(key string, r io.Reader, size int64) error {
	body := &countingReader{r: r}
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}

	if body.n != size {
		// Drop the short object so no snapshot exists for the key.
		_, delErr := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(key)),
		})
		if delErr != nil {
			return fmt.Errorf("size mismatch: expected %d bytes, got %d; removing partial object %s: %w",
				size, body.n, s.objectKey(key), delErr)
		}
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, body.n)
	}
	return nil
}

// ReadSnapshot downloads <prefix>/<key> into w.
func (s *S3Store) ReadSnapshot(key string, w io.Writer) error {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return s.convertError(key, "downloading snapshot", err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot body: %w", err)
	}
	return nil
}

// DeleteSnapshot removes <prefix>/<key>. S3 deletes are idempotent, so the
// object is checked first to report missing keys.
func (s *S3Store) DeleteSnapshot(key string) error {
	_, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return s.convertError(key, "checking snapshot", err)
	}

	_, err = s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return s.convertError(key, "deleting snapshot", err)
	}
	return nil
}

func (s *S3Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// convertError maps the SDK's missing-object errors to fv.ErrSnapshotNotFound.
func (s *S3Store) convertError(key, action string, err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %s", fv.ErrSnapshotNotFound, key)
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", fv.ErrSnapshotNotFound, key)
	}
	return fmt.Errorf("%s: %w", action, err)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ fv.SnapshotStore = (*S3Store)(nil)
