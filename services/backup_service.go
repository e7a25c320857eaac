package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "github.com/No9005/mini-moi/config"
)

// BackupInterface defines the interface for database backup operations
type BackupInterface interface {
	CreateSnapshot() (string, error)
	ListSnapshots() ([]string, error)
	DeleteSnapshot(key string) error
}

// BackupService uploads snapshots of the local database file to S3
type BackupService struct {
	client *s3.Client
	bucket string
	dbPath string
}

var backupServiceInstance BackupInterface

// InitBackupService initializes the backup service with AWS credentials
func InitBackupService() (BackupInterface, error) {
	cfg := appConfig.GetConfig()

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	backupServiceInstance = &BackupService{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
		dbPath: cfg.DatabaseURL,
	}
	return backupServiceInstance, nil
}

// GetBackupService returns the initialized backup service instance
func GetBackupService() BackupInterface {
	return backupServiceInstance
}

// SetBackupService sets the backup service instance (primarily for testing)
func SetBackupService(service BackupInterface) {
	backupServiceInstance = service
}

// CreateSnapshot uploads a copy of the database file to S3 and returns the
// object key. Only file-backed (sqlite) databases can be snapshotted this
// way; server databases have their own backup tooling.
func (s *BackupService) CreateSnapshot() (string, error) {
	if strings.HasPrefix(s.dbPath, "postgres") {
		return "", fmt.Errorf("snapshots are only supported for file-backed databases")
	}

	content, err := os.ReadFile(s.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to read database file: %w", err)
	}

	// Format: backups/{timestamp}_{filename}
	key := fmt.Sprintf("backups/%d_%s", time.Now().Unix(), filepath.Base(s.dbPath))

	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot to S3: %w", err)
	}

	log.Printf("Uploaded database snapshot %s", key)
	return key, nil
}

// ListSnapshots returns the keys of all stored snapshots, newest first
func (s *BackupService) ListSnapshots() ([]string, error) {
	output, err := s.client.ListObjectsV2(context.TODO(), &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("backups/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	keys := make([]string, 0, len(output.Contents))
	for _, object := range output.Contents {
		keys = append(keys, aws.ToString(object.Key))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// DeleteSnapshot deletes a stored snapshot
func (s *BackupService) DeleteSnapshot(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
