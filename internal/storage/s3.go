// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for
// theme artifacts and rendered previews. It wraps the AWS SDK v2 and is
// configured for path-style access (required by CEPH/Hetzner).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Content types for the two object families we store.
const (
	artifactContentType = "application/octet-stream"
	previewContentType  = "image/jpeg"
)

// Client wraps an S3 client for theme storage on two buckets: a private
// one for theme artifacts (download goes through presigned URLs) and a
// public one for preview images (served directly).
type Client struct {
	s3              *s3.Client
	presigner       *s3.PresignClient
	artifactsBucket string
	previewsBucket  string
	endpoint        string
	publicURL       string // optional CDN/direct URL for previews
}

// New creates an S3 storage client configured for CEPH/Hetzner with
// path-style addressing. Returns (nil, nil) if endpoint or credentials
// are empty, allowing the app to start without storage.
func New(endpoint, region, accessKey, secretKey, artifactsBucket, previewsBucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")

	// Build S3 client with static credentials and path-style access.
	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:              s3Client,
		presigner:       s3.NewPresignClient(s3Client),
		artifactsBucket: artifactsBucket,
		previewsBucket:  previewsBucket,
		endpoint:        endpoint,
		publicURL:       strings.TrimRight(publicURL, "/"),
	}, nil
}

// UploadArtifact stores a theme artifact in the private bucket.
func (c *Client) UploadArtifact(ctx context.Context, key string, data []byte) error {
	return c.put(ctx, c.artifactsBucket, key, artifactContentType, data, "")
}

// UploadPreview stores a rendered preview image in the public bucket
// with a public-read ACL so it can be served directly.
func (c *Client) UploadPreview(ctx context.Context, key string, data []byte) error {
	return c.put(ctx, c.previewsBucket, key, previewContentType, data, s3types.ObjectCannedACLPublicRead)
}

func (c *Client) put(ctx context.Context, bucket, key, contentType string, data []byte, acl s3types.ObjectCannedACL) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if acl != "" {
		input.ACL = acl
	}

	_, err := c.s3.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

// DeleteArtifact removes a theme artifact from the private bucket.
func (c *Client) DeleteArtifact(ctx context.Context, key string) error {
	return c.delete(ctx, c.artifactsBucket, key)
}

// DeletePreview removes a preview image from the public bucket.
func (c *Client) DeletePreview(ctx context.Context, key string) error {
	return c.delete(ctx, c.previewsBucket, key)
}

func (c *Client) delete(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PreviewURL returns the public URL for a preview image. Uses the
// configured public URL if set, otherwise builds a path-style URL.
func (c *Client) PreviewURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.previewsBucket + "/" + key
}

// ArtifactURL generates a pre-signed GET URL for a theme artifact in the
// private bucket. The URL is valid for the specified duration (max 7 days
// per S3 spec).
func (c *Client) ArtifactURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.artifactsBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", c.artifactsBucket, key, err)
	}
	return req.URL, nil
}
