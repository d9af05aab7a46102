package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectAPI is the slice of the MinIO client ObjectSource uses; tests fake it.
type objectAPI interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return w.c.StatObject(ctx, bucketName, objectName, opts)
}

func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// ObjectConfig locates a dataset object
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	UseSSL    bool
}

// ObjectSource reads the dataset from an object store bucket
type ObjectSource struct {
	api    objectAPI
	bucket string
	object string
}

// NewObjectSource connects a MinIO client for cfg
func NewObjectSource(cfg ObjectConfig) (*ObjectSource, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	return newObjectSourceWithAPI(minioClientWrapper{c: client}, cfg.Bucket, cfg.Object), nil
}

func newObjectSourceWithAPI(api objectAPI, bucket, object string) *ObjectSource {
	return &ObjectSource{api: api, bucket: bucket, object: object}
}

// Open implements Source. The object is stat'ed first so a missing dataset
// surfaces as ErrNotFound instead of a failure on first read.
func (o *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if _, err := o.api.StatObject(ctx, o.bucket, o.object, minio.StatObjectOptions{}); err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, o.Name())
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	obj, err := o.api.GetObject(ctx, o.bucket, o.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, nil
}

// Name implements Source
func (o *ObjectSource) Name() string {
	return "s3://" + o.bucket + "/" + o.object
}
