package utils

import (
	"bytes"
	"context"
	"fmt"

	"il2-stats/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Client uploads objects to a Cloudflare R2 bucket over the S3 API.
type R2Client struct {
	client     *s3.Client
	bucket     string
	cdnBaseURL string
}

func NewR2Client(ctx context.Context, cfg *config.Config) (*R2Client, error) {
	st := cfg.Storage
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", st.AccountID)
	cdnBaseURL := st.CDNBaseURL
	if cdnBaseURL == "" {
		cdnBaseURL = endpoint + "/" + st.Bucket
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			st.AccessKeyID, st.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &R2Client{client: client, bucket: st.Bucket, cdnBaseURL: cdnBaseURL}, nil
}

// PutObject uploads body under key and returns the public URL.
func (c *R2Client) PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return fmt.Sprintf("%s/%s", c.cdnBaseURL, key), nil
}
