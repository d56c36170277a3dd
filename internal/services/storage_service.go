// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/averbacoes/backoffice/internal/config"
)

// Bounds for the in-process cache used without S3.
const (
	maxMemoryEntries = 256
	maxMemoryBytes   = 128 << 20
)

// CachedDocument is a downloaded document blob.
type CachedDocument struct {
	Content     []byte
	ContentType string
	FileName    string
}

// StorageService caches downloaded documents, in S3 when a bucket is
// configured and in process otherwise. Cache failures never fail a
// download.
type StorageService struct {
	s3Client s3iface.S3API
	bucket   string
	prefix   string

	mu          sync.Mutex
	memory      map[string]CachedDocument
	order       []string
	memoryBytes int64
	memoryLimit int64
	maxBlob     int64
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	s := &StorageService{
		prefix:      config.AWS.S3Prefix,
		memory:      make(map[string]CachedDocument),
		memoryLimit: maxMemoryBytes,
		maxBlob:     config.Upload.MaxFileSize,
	}

	if config.AWS.S3Bucket == "" {
		// In-process cache for local development
		return s, nil
	}

	awsConfig := &aws.Config{Region: aws.String(config.AWS.Region)}
	if config.AWS.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	s.s3Client = s3.New(sess)
	s.bucket = config.AWS.S3Bucket
	return s, nil
}

// NewS3StorageService wraps an existing client.
func NewS3StorageService(client s3iface.S3API, bucket, prefix string) *StorageService {
	return &StorageService{
		s3Client:    client,
		bucket:      bucket,
		prefix:      prefix,
		memory:      make(map[string]CachedDocument),
		memoryLimit: maxMemoryBytes,
	}
}

func (s *StorageService) putMemory(key string, doc *CachedDocument) {
	size := int64(len(doc.Content))
	if s.maxBlob > 0 && size > s.maxBlob {
		return
	}
	if size > s.memoryLimit {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeMemory(key)
	s.memory[key] = *doc
	s.order = append(s.order, key)
	s.memoryBytes += size
	for len(s.order) > maxMemoryEntries || s.memoryBytes > s.memoryLimit {
		s.removeMemory(s.order[0])
	}
}

// removeMemory expects s.mu to be held.
func (s *StorageService) removeMemory(key string) {
	doc, ok := s.memory[key]
	if !ok {
		return
	}
	delete(s.memory, key)
	s.memoryBytes -= int64(len(doc.Content))
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *StorageService) key(idAverbacao, idDocumento int64) string {
	if s.prefix == "" {
		return fmt.Sprintf("%d/%d", idAverbacao, idDocumento)
	}
	return fmt.Sprintf("%s/%d/%d", s.prefix, idAverbacao, idDocumento)
}

func (s *StorageService) Get(ctx context.Context, idAverbacao, idDocumento int64) (*CachedDocument, bool, error) {
	key := s.key(idAverbacao, idDocumento)

	if s.s3Client == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		doc, ok := s.memory[key]
		if !ok {
			return nil, false, nil
		}
		return &doc, true, nil
	}

	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached document: %w", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached document: %w", err)
	}

	doc := &CachedDocument{
		Content:     content,
		ContentType: aws.StringValue(out.ContentType),
	}
	if name, ok := out.Metadata["Filename"]; ok {
		doc.FileName = aws.StringValue(name)
	}
	return doc, true, nil
}

func (s *StorageService) Put(ctx context.Context, idAverbacao, idDocumento int64, doc *CachedDocument) error {
	key := s.key(idAverbacao, idDocumento)

	if s.s3Client == nil {
		s.putMemory(key, doc)
		return nil
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(doc.Content),
		ContentType:   aws.String(doc.ContentType),
		ContentLength: aws.Int64(int64(len(doc.Content))),
		Metadata:      map[string]*string{"Filename": aws.String(doc.FileName)},
	})
	if err != nil {
		return fmt.Errorf("failed to cache document: %w", err)
	}
	return nil
}

func (s *StorageService) Delete(ctx context.Context, idAverbacao, idDocumento int64) error {
	key := s.key(idAverbacao, idDocumento)

	if s.s3Client == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.removeMemory(key)
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete cached document: %w", err)
	}
	return nil
}
