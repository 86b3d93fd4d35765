package output

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/cenkalti/backoff/v4"
	"github.com/schollz/progressbar/v3"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/logging"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelay        = 2 * time.Second
	defaultPartSize          = 5 * 1024 * 1024 // 5MB
	defaultConcurrentUploads = 5
	defaultOutputDir         = "output"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// UploadConfig holds upload configuration
type UploadConfig struct {
	PartSize        int64
	ConcurrentParts int
}

// Type represents the output type
type Type string

const (
	// FileSystem represents local filesystem output
	FileSystem Type = "filesystem"
	// S3 represents S3 bucket output
	S3 Type = "s3"
)

// Config holds output configuration
type Config struct {
	Type      Type
	S3Bucket  string
	S3Region  string
	Profile   string
	OutputDir string
	Retry     *RetryConfig
	Upload    *UploadConfig
	// Progress receives the upload bar. Defaults to stderr.
	Progress io.Writer
}

// Writer persists a gzipped JSON report to the filesystem or an S3 bucket
type Writer struct {
	config   Config
	uploader s3manageriface.UploaderAPI
	now      func() time.Time
}

// WriterOption configures a Writer
type WriterOption func(*Writer)

// WithUploader supplies the S3 uploader instead of building one from a session
func WithUploader(u s3manageriface.UploaderAPI) WriterOption {
	return func(w *Writer) { w.uploader = u }
}

// WithClock fixes the timestamp used for report paths
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a new output writer with default settings
func NewWriter(config Config, opts ...WriterOption) *Writer {
	if config.Retry == nil {
		config.Retry = &RetryConfig{
			MaxRetries: defaultMaxRetries,
			RetryDelay: defaultRetryDelay,
		}
	}
	if config.Upload == nil {
		config.Upload = &UploadConfig{
			PartSize:        defaultPartSize,
			ConcurrentParts: defaultConcurrentUploads,
		}
	}
	if config.Type == FileSystem && config.OutputDir == "" {
		config.OutputDir = defaultOutputDir
	}
	if config.Progress == nil {
		config.Progress = os.Stderr
	}

	w := &Writer{config: config, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ReportPath returns the destination of a report written at t:
// filesystem: <dir>/YYYY/MM/DD/HH-MM-SS-0700.json.gz
// s3:         YYYY/MM/DD/HH-MM-SS-0700.json.gz
func (w *Writer) ReportPath(t time.Time) string {
	fileName := t.Format("15-04-05-0700") + ".json.gz"
	datePath := t.Format("2006/01/02")

	if w.config.Type == FileSystem {
		return filepath.Join(w.config.OutputDir, filepath.FromSlash(datePath), fileName)
	}
	return path.Join(datePath, fileName)
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write to gzip writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Write marshals results and stores them at the destination. It returns the
// file path or object key written.
func (w *Writer) Write(ctx context.Context, results interface{}) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	compressed, err := compress(data)
	if err != nil {
		return "", fmt.Errorf("failed to compress data: %w", err)
	}

	dest := w.ReportPath(w.now())

	switch w.config.Type {
	case FileSystem:
		return dest, w.writeToFileSystem(dest, compressed)
	case S3:
		return dest, w.writeToS3WithRetry(ctx, dest, compressed)
	default:
		return "", fmt.Errorf("unsupported output type: %s", w.config.Type)
	}
}

func (w *Writer) writeToFileSystem(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", dest, err)
	}
	return nil
}

func (w *Writer) writeToS3WithRetry(ctx context.Context, key string, data []byte) error {
	if w.config.S3Bucket == "" {
		return fmt.Errorf("S3 bucket not specified")
	}
	if w.uploader == nil {
		uploader, err := w.newUploader()
		if err != nil {
			return err
		}
		w.uploader = uploader
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.config.Retry.RetryDelay
	retries := uint64(0)
	if w.config.Retry.MaxRetries > 1 {
		retries = uint64(w.config.Retry.MaxRetries - 1)
	}

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return w.writeToS3(ctx, key, data)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx), func(err error, next time.Duration) {
		logging.Warn("Retrying S3 upload", map[string]interface{}{
			"attempt": attempt + 1,
			"max":     w.config.Retry.MaxRetries,
			"delay":   next.String(),
			"error":   err.Error(),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3 after %d attempts: %w", attempt, err)
	}
	return nil
}

func (w *Writer) newUploader() (s3manageriface.UploaderAPI, error) {
	sess, err := awslib.NewSession(w.config.Profile, w.config.S3Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.PartSize = w.config.Upload.PartSize
		u.Concurrency = w.config.Upload.ConcurrentParts
	}), nil
}

func (w *Writer) writeToS3(ctx context.Context, key string, data []byte) error {
	reader := &progressReader{
		reader: bytes.NewReader(data),
		bar: progressbar.NewOptions64(
			int64(len(data)),
			progressbar.OptionSetWriter(w.config.Progress),
			progressbar.OptionSetDescription("Uploading to S3..."),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(w.config.Progress)
			}),
		),
	}

	_, err := w.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:               aws.String(w.config.S3Bucket),
		Key:                  aws.String(key),
		Body:                 reader,
		ContentType:          aws.String("application/json"),
		ContentEncoding:      aws.String("gzip"),
		ServerSideEncryption: aws.String("aws:kms"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// progressReader wraps an io.Reader to track progress
type progressReader struct {
	reader io.Reader
	bar    *progressbar.ProgressBar
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	_ = r.bar.Add(n)
	return n, err
}
