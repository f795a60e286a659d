package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

type S3Service struct {
	client     *s3.S3
	bucketName string
	region     string
}

// NewS3Service returns nil when the bucket is not configured; image upload is
// then rejected at the service layer.
func NewS3Service(region, bucketName, accessKey, secretKey string) *S3Service {
	if bucketName == "" || region == "" {
		return nil
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	}))

	return &S3Service{
		client:     s3.New(sess),
		bucketName: bucketName,
		region:     region,
	}
}

type UploadResult struct {
	Key         string
	URL         string
	FileName    string
	ContentType string
	Size        int64
}

func (s *S3Service) UploadImage(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromExtension(header.Filename)
	}
	if !isValidImageType(contentType) {
		return nil, fmt.Errorf("invalid file type: %s", contentType)
	}
	if header.Size > maxImageSize {
		return nil, fmt.Errorf("file size too large: %d bytes (max: %d bytes)", header.Size, maxImageSize)
	}

	fileExt := filepath.Ext(header.Filename)
	datePrefix := time.Now().Format("2006/01/02")
	key := fmt.Sprintf("products/images/%s/%s%s", datePrefix, uuid.New().String(), fileExt)

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}

	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buffer.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %v", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key),
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	}, nil
}

func (s *S3Service) UploadImages(headers []*multipart.FileHeader) ([]*UploadResult, error) {
	var results []*UploadResult
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			s.rollback(results)
			return nil, fmt.Errorf("failed to open %s: %v", header.Filename, err)
		}

		result, err := s.UploadImage(file, header)
		file.Close()
		if err != nil {
			s.rollback(results)
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *S3Service) DeleteImages(keys []string) error {
	for _, key := range keys {
		_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.bucketName),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete %s: %v", key, err)
		}
	}
	return nil
}

func (s *S3Service) rollback(results []*UploadResult) {
	var keys []string
	for _, r := range results {
		keys = append(keys, r.Key)
	}
	if len(keys) > 0 {
		s.DeleteImages(keys)
	}
}

func isValidImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func contentTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return ""
}
