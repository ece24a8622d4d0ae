package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3Driver struct {
	Client *s3.S3
	Bucket string
	Region string
}

func NewS3DriverFromEnv() (*S3Driver, error) {
	region := env("AWS_REGION")
	bucket := env("AWS_S3_BUCKET")
	ak := env("AWS_ACCESS_KEY_ID")
	sk := env("AWS_SECRET_ACCESS_KEY")
	if region == "" || bucket == "" {
		return nil, fmt.Errorf("missing env: AWS_REGION/AWS_S3_BUCKET")
	}
	cfg := &aws.Config{Region: aws.String(region)}
	if ak != "" && sk != "" {
		cfg.Credentials = credentials.NewStaticCredentials(ak, sk, "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Driver{Client: s3.New(sess), Bucket: bucket, Region: region}, nil
}

func (d *S3Driver) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	body, ok := r.(io.ReadSeeker)
	if !ok {
		return fmt.Errorf("s3: body must be seekable")
	}
	_, err := d.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(d.Bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	return err
}

func (d *S3Driver) Delete(ctx context.Context, key string) error {
	_, err := d.Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (d *S3Driver) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.Bucket, d.Region, key)
}
