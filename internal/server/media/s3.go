// Package media stores user images in S3-compatible object storage and hands
// back the public URL. Local files are spooled uploads and are removed once
// the upload has been attempted.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrNoFile = errors.New("no file to upload")

// Uploader turns a local file into a hosted URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type Options struct {
	AccessKey     string
	SecretKey     string
	Region        string
	Bucket        string
	BaseEndpoint  string
	PublicBaseURL string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type S3Uploader struct {
	client    objectPutter
	bucket    string
	publicURL string
	logger    logging.Logger
	now       func() time.Time
}

func NewS3Uploader(ctx context.Context, opts Options, logger logging.Logger) (*S3Uploader, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: publicBaseURL(opts),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// publicBaseURL is where stored objects are served from: the configured
// public URL, or the path-style bucket URL of the endpoint.
func publicBaseURL(opts Options) string {
	if opts.PublicBaseURL != "" {
		return strings.TrimRight(opts.PublicBaseURL, "/")
	}
	if opts.BaseEndpoint != "" {
		return strings.TrimRight(opts.BaseEndpoint, "/") + "/" + opts.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
}

func (u *S3Uploader) storageKey(ext string) string {
	d := u.now()
	return fmt.Sprintf("images/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), strings.ToLower(ext))
}

// Upload puts localPath into the bucket and returns its URL. The local file
// is deleted whether or not the upload succeeds.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", ErrNoFile
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.logger.Warn(ctx, "remove spooled upload", "path", localPath, "error", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	contentType, err := detectContentType(f, localPath)
	if err != nil {
		return "", err
	}

	key := u.storageKey(filepath.Ext(localPath))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	u.logger.Debug(ctx, "media uploaded", "key", key, "content_type", contentType)

	return u.publicURL + "/" + key, nil
}

func detectContentType(f *os.File, name string) (string, error) {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct, nil
	}

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}
