// Package archive uploads generated report artifacts to S3-compatible
// object storage for long-term retention.
package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cloudlens/advisor/internal/config"
	"github.com/cloudlens/advisor/pkg/logger"
)

// ObjectPutter is the subset of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver copies job artifacts into an object storage bucket.
type Archiver struct {
	client ObjectPutter
	logger logger.Logger
	bucket string
	prefix string
}

// New creates an Archiver from the archive configuration.
func New(ctx context.Context, cfg *config.ArchiveConfig) (*Archiver, error) {
	return NewWithLogger(ctx, cfg, logger.GetGlobalLogger())
}

// NewWithLogger creates an Archiver with a custom logger.
func NewWithLogger(ctx context.Context, cfg *config.ArchiveConfig, log logger.Logger) (*Archiver, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		// MinIO and gateway setups need path-style addressing.
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg, log), nil
}

// NewWithClient creates an Archiver with a pre-configured client.
func NewWithClient(client ObjectPutter, cfg *config.ArchiveConfig, log logger.Logger) *Archiver {
	return &Archiver{
		client: client,
		logger: log,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}
}

// ArchiveJob uploads every file in jobDir under
// <prefix>/<client>/<environment>/<jobID>/. Returns the object keys written.
func (a *Archiver) ArchiveJob(ctx context.Context, clientName, environment, jobID, jobDir string) ([]string, error) {
	entries, err := os.ReadDir(jobDir)
	if err != nil {
		return nil, fmt.Errorf("reading job directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		key := a.objectKey(clientName, environment, jobID, entry.Name())
		if err := a.uploadFile(ctx, filepath.Join(jobDir, entry.Name()), key); err != nil {
			return keys, fmt.Errorf("uploading %s: %w", entry.Name(), err)
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("job directory %s contains no files", jobDir)
	}

	a.logger.Info("Archived job artifacts",
		"bucket", a.bucket,
		"job_id", jobID,
		"objects", len(keys))
	return keys, nil
}

// Upload copies a single file to the given object key.
func (a *Archiver) Upload(ctx context.Context, localPath, key string) error {
	return a.uploadFile(ctx, localPath, key)
}

func (a *Archiver) uploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			a.logger.Warn("failed to close file", "path", localPath, "error", cerr)
		}
	}()

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return fmt.Errorf("putting object %s: %w", key, err)
	}

	a.logger.Debug("Uploaded object", "bucket", a.bucket, "key", key)
	return nil
}

func (a *Archiver) objectKey(clientName, environment, jobID, name string) string {
	parts := []string{clientName, environment, jobID, name}
	if a.prefix != "" {
		parts = append([]string{a.prefix}, parts...)
	}
	return path.Join(parts...)
}

func contentType(localPath string) string {
	switch filepath.Ext(localPath) {
	case ".json":
		return "application/json"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
