package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type OSSDriver struct {
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string // ALI_OSS_PUBLIC_BASE (CDN)
}

func NewOSSDriverFromEnv() (*OSSDriver, error) {
	endpoint := env("ALI_OSS_ENDPOINT")
	ak := env("ALI_OSS_ACCESS_KEY")
	sk := env("ALI_OSS_SECRET_KEY")
	sts := env("ALI_OSS_SECURITY_TOKEN")
	bucketName := env("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var (
		client *oss.Client
		err    error
	)
	if sts != "" {
		client, err = oss.New(endpoint, ak, sk, oss.SecurityToken(sts))
	} else {
		client, err = oss.New(endpoint, ak, sk)
	}
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 {
			log.Printf("[OSS] warn: skip location check (bucket=%s): %s", bucketName, se.Code)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", bucketName, loc)
	}

	return &OSSDriver{
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: env("ALI_OSS_PUBLIC_BASE"),
	}, nil
}

func (d *OSSDriver) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	return d.Bucket.PutObject(key, r,
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
}

func (d *OSSDriver) Delete(ctx context.Context, key string) error {
	return d.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (d *OSSDriver) PublicURL(key string) string {
	if d.PublicBase != "" {
		return strings.TrimRight(d.PublicBase, "/") + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(d.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", d.BucketName, end, key)
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }
