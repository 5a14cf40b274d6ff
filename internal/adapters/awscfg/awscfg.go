// Package awscfg builds aws.Config values from static credentials for the SES and S3 adapters.
package awscfg

import (
	"crypto/tls"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Options holds the connection settings shared by the AWS clients.
type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the service endpoint, e.g. for LocalStack or MinIO.
	Endpoint           string
	InsecureSkipVerify bool
}

// New returns an aws.Config using static credentials and a TLS 1.2+ HTTP client.
func New(component string, opts Options) aws.Config {
	if opts.InsecureSkipVerify {
		log.Printf("[%s] WARNING: TLS certificate verification is disabled. Use only in development.", component)
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: opts.InsecureSkipVerify,
				MinVersion:         tls.VersionTLS12,
			},
		},
	}
	cfg := aws.Config{
		Region: opts.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
		HTTPClient: httpClient,
	}
	if opts.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return cfg
}
