// Package infra — s3.go сохраняет картинки игр в S3-совместимое хранилище.
package infra

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

// S3Config — параметры хранилища картинок.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // для MinIO и других S3-совместимых
	PublicURL       string // базовый URL раздачи; пусто — адрес бакета AWS
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectPutter — часть s3.Client, которая нужна хранилищу.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore загружает картинки в бакет.
type S3ImageStore struct {
	client    ObjectPutter
	bucket    string
	publicURL string
}

// NewS3Client создаёт клиента S3. Ключи из конфигурации имеют приоритет
// над стандартной цепочкой (переменные AWS_*, профили, роль).
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

// NewS3ImageStore создаёт хранилище поверх клиента.
func NewS3ImageStore(client ObjectPutter, cfg S3Config) *S3ImageStore {
	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3ImageStore{client: client, bucket: cfg.Bucket, publicURL: public}
}

// Upload кладёт объект в бакет и возвращает его публичный URL.
func (s *S3ImageStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=86400"),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки %s в S3: %w", key, err)
	}

	log.WithFields(log.Fields{"bucket": s.bucket, "key": key, "size": len(data)}).Info("Картинка загружена в S3")
	return s.publicURL + "/" + key, nil
}
