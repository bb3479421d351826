package services

import (
	"context"
	"fmt"
	"io"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinIOService gives the resume source read access to one bucket. It is disabled unless
// MINIO_ENDPOINT is set.
type MinIOService struct {
	appContext.DefaultService
	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
}

const MINIO_SVC = "minio_svc"

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	svc.endpoint = shared.GetEnv("MINIO_ENDPOINT", "")
	svc.accessKey = shared.GetEnv("MINIO_ACCESS_KEY", "")
	svc.secretKey = shared.GetEnv("MINIO_SECRET_KEY", "")
	svc.useSSL = shared.GetEnvBool("MINIO_USE_SSL", false)
	svc.bucketName = shared.GetEnv("MINIO_BUCKET_NAME", "portfolio")

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	if svc.endpoint == "" {
		log.Info("MINIO_ENDPOINT not set, object storage disabled")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		log.WithError(err).Warn("Failed to check MinIO bucket, resume objects may be unavailable")
	} else if !exists {
		log.WithField("bucket", svc.bucketName).Warn("MinIO bucket does not exist")
	}

	log.WithField("endpoint", svc.endpoint).Info("MinIO service started")
	return nil
}

func (svc *MinIOService) Enabled() bool {
	return svc != nil && svc.client != nil
}

// ReadObject downloads a whole object. Resume files are small enough to hold in memory.
func (svc *MinIOService) ReadObject(ctx context.Context, objectName string) ([]byte, error) {
	if !svc.Enabled() {
		return nil, fmt.Errorf("object storage not configured")
	}

	object, err := svc.client.GetObject(ctx, svc.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %v", objectName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %v", objectName, err)
	}

	return data, nil
}
