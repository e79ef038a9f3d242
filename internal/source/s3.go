package source

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ppiankov/claimlens/internal/model"
)

// objectGetter is the subset of the S3 client used here.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads processed OCR text from an S3-compatible bucket.
type S3Source struct {
	client   objectGetter
	bucket   string
	maxBytes int64
}

// NewS3Source builds an S3 client from cfg. Static credentials are used
// when both keys are set, otherwise the default AWS chain applies.
func NewS3Source(ctx context.Context, cfg model.S3Config, maxBytes int64) (*S3Source, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Source(client, cfg.Bucket, maxBytes), nil
}

func newS3Source(client objectGetter, bucket string, maxBytes int64) *S3Source {
	return &S3Source{client: client, bucket: bucket, maxBytes: maxBytes}
}

// Read fetches s3://bucket/key, or a bare key from the configured bucket.
// Keys under raw/ are redirected to their processed text.
func (s *S3Source) Read(ctx context.Context, ref string) (*model.Document, error) {
	bucket, key, err := s.locate(ref)
	if err != nil {
		return nil, err
	}
	key = ProcessedKey(key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	contentType := contentTypeFor(key)
	text, err := decode(out.Body, contentType, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}

	return NewDocument("s3://"+bucket+"/"+key, text, contentType), nil
}

func (s *S3Source) locate(ref string) (string, string, error) {
	if strings.HasPrefix(ref, "s3://") {
		return ParseS3URI(ref)
	}
	if s.bucket == "" {
		return "", "", fmt.Errorf("%w: %s (no bucket configured)", ErrUnsupportedRef, ref)
	}
	return s.bucket, strings.TrimPrefix(ref, "/"), nil
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrUnsupportedRef, uri, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedRef, uri)
	}
	return u.Host, key, nil
}

// ProcessedKey maps an upload key raw/<name>.<ext> to processed/<name>.txt.
// Other keys are returned unchanged.
func ProcessedKey(key string) string {
	if !strings.HasPrefix(key, "raw/") {
		return key
	}
	rest := strings.TrimPrefix(key, "raw/")
	ext := path.Ext(rest)
	return "processed/" + strings.TrimSuffix(rest, ext) + ".txt"
}
