// Package storage implements the document bucket on S3 or a local directory.
package storage

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"eventify/internal/adapters/awscfg"
	"eventify/internal/domain"
)

// S3Config holds the bucket connection settings.
type S3Config struct {
	Bucket             string
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	Endpoint           string
	UsePathStyle       bool
	InsecureSkipVerify bool
	// PublicBaseURL, when set, is joined with the key instead of presigning a URL.
	PublicBaseURL string
	PresignExpiry time.Duration
}

// Config selects and configures the document store.
type Config struct {
	Provider string
	LocalDir string
	// LocalBaseURL prefixes keys in URLs returned by the local store.
	LocalBaseURL string
	S3           S3Config
}

// New builds the document store for cfg. Provider "s3" uses S3; "local" or empty uses a directory.
func New(cfg Config) (domain.DocumentStore, error) {
	switch cfg.Provider {
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		awsCfg := awscfg.New("STORAGE", awscfg.Options{
			Region:             cfg.S3.Region,
			AccessKeyID:        cfg.S3.AccessKeyID,
			SecretAccessKey:    cfg.S3.SecretAccessKey,
			Endpoint:           cfg.S3.Endpoint,
			InsecureSkipVerify: cfg.S3.InsecureSkipVerify,
		})
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.S3.UsePathStyle
		})
		return newS3Store(client, s3.NewPresignClient(client), cfg.S3), nil
	case "local", "":
		return NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL)
	default:
		log.Printf("[STORAGE] Unknown storage provider %q, using local directory", cfg.Provider)
		return NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL)
	}
}

// cleanKey rejects keys that could escape the bucket prefix.
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("empty key: %w", domain.ErrInvalidInput)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("invalid key %q: %w", key, domain.ErrInvalidInput)
		}
	}
	return key, nil
}
