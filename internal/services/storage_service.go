// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/magazyn/inventory-backend/internal/config"
)

// StorageService writes photo assets either to the local upload directory or
// to S3, depending on configuration. Stored files are immutable: every upload
// gets a freshly generated name, so nothing is ever overwritten.
type StorageService struct {
	s3Client *s3.S3
	cfg      config.StorageConfig
}

type StoredAsset struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	svc := &StorageService{cfg: cfg}

	if cfg.Driver == "s3" {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.Region),
			Credentials: credentials.NewStaticCredentials(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		svc.s3Client = s3.New(sess)
		return svc, nil
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return svc, nil
}

// Store writes the asset and returns its public URL and key. The original
// filename is only consulted for its extension; the stored name is derived
// from a fresh UUID.
func (s *StorageService) Store(data []byte, originalName, contentType string) (*StoredAsset, error) {
	key := s.generateKey(originalName)

	if s.s3Client != nil {
		return s.storeS3(data, key, contentType)
	}
	return s.storeLocal(data, key)
}

func (s *StorageService) storeS3(data []byte, key, contentType string) (*StoredAsset, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String("public-read"),
	}

	if _, err := s.s3Client.PutObject(params); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &StoredAsset{
		URL:       s.s3URL(key),
		Key:       key,
		SizeBytes: int64(len(data)),
	}, nil
}

func (s *StorageService) storeLocal(data []byte, key string) (*StoredAsset, error) {
	path := filepath.Join(s.cfg.UploadDir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredAsset{
		URL:       strings.TrimRight(s.cfg.BaseURL, "/") + "/" + key,
		Key:       key,
		SizeBytes: int64(len(data)),
	}, nil
}

// Delete removes a stored asset by key. Callers treat failures as
// non-fatal; photo metadata is authoritative.
func (s *StorageService) Delete(key string) error {
	if s.s3Client != nil {
		_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete file from S3: %w", err)
		}
		return nil
	}

	return os.Remove(filepath.Join(s.cfg.UploadDir, key))
}

// KeyFromURL recovers the storage key for a URL produced by Store, or ""
// when the URL was not issued by this backend.
func (s *StorageService) KeyFromURL(url string) string {
	prefixes := []string{strings.TrimRight(s.cfg.BaseURL, "/") + "/"}
	if s.cfg.CloudFrontURL != "" {
		prefixes = append(prefixes, strings.TrimRight(s.cfg.CloudFrontURL, "/")+"/")
	}
	if s.cfg.S3Bucket != "" {
		prefixes = append(prefixes, fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.cfg.S3Bucket, s.cfg.Region))
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return ""
}

func (s *StorageService) MaxUploadBytes() int64 {
	return s.cfg.MaxUploadBytes
}

func (s *StorageService) generateKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".bin"
	}
	return uuid.New().String() + ext
}

func (s *StorageService) s3URL(key string) string {
	if s.cfg.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.CloudFrontURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.S3Bucket, s.cfg.Region, key)
}

// ValidateImage checks the leading bytes for a known image signature.
func (s *StorageService) ValidateImage(data []byte) error {
	if !isValidImageType(data) {
		return fmt.Errorf("invalid image file")
	}
	return nil
}

func isValidImageType(buffer []byte) bool {
	// JPEG
	if len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF {
		return true
	}

	// PNG
	if len(buffer) >= 8 && buffer[0] == 0x89 && buffer[1] == 0x50 && buffer[2] == 0x4E && buffer[3] == 0x47 {
		return true
	}

	// GIF
	if len(buffer) >= 6 && (string(buffer[0:6]) == "GIF87a" || string(buffer[0:6]) == "GIF89a") {
		return true
	}

	// WebP
	if len(buffer) >= 12 && string(buffer[0:4]) == "RIFF" && string(buffer[8:12]) == "WEBP" {
		return true
	}

	return false
}
