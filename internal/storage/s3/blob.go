// Package s3 implements the blob store on any S3-compatible backend
// (AWS or MinIO via the endpoint override).
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/avolkovs/clipstream/internal/clips/blob"
)

const presignTTL = 15 * time.Minute

var _ blob.Store = (*Store)(nil)

type Config struct {
	Region    string
	Endpoint  string // empty for AWS proper
	Bucket    string
	AccessKey string
	SecretKey string
}

// Store satisfies blob.Store. Object URLs are presigned GETs, so buckets can
// stay private.
type Store struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	bucket  string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:  client,
		presign: awss3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

func (s *Store) Put(ctx context.Context, path string, r io.Reader, size int64, onProgress func(float64)) error {
	body := io.Reader(r)
	if onProgress != nil {
		body = &progressReader{r: r, total: size, onProgress: onProgress}
	}

	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", path, err)
	}
	return nil
}

func (s *Store) ResolveURL(ctx context.Context, path string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, awss3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("s3 resolve %s: %w", path, err)
	}
	return req.URL, nil
}

// Delete removes an object. S3 treats deleting a missing key as success,
// which is exactly what the retry-safe delete flow needs.
func (s *Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", path, err)
	}
	return nil
}

// progressReader reports the fraction of total bytes that passed through.
// An unknown total reports 0 until EOF and 1 at EOF.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	switch {
	case p.total > 0:
		frac := float64(p.read) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		p.onProgress(frac)
	case err == io.EOF:
		p.onProgress(1)
	}
	return n, err
}
