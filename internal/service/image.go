package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/models"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted upload in bytes.
const MaxImageSize = 5 << 20

const presignExpiry = time.Hour

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// S3Store is an ObjectStore backed by an S3 bucket.
type S3Store struct {
	s3Config *config.S3Config
}

// NewS3Store stores objects in the configured bucket.
func NewS3Store(s3Config *config.S3Config) *S3Store {
	return &S3Store{s3Config: s3Config}
}

// Put uploads data and returns a presigned GET URL for it.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.s3Config.PresignedGetURL(ctx, key, presignExpiry)
}

// ImageAnalysis is the outcome of analysing one uploaded photo.
type ImageAnalysis struct {
	ImageURL string                 `json:"image_url,omitempty"`
	Items    []DetectedItem         `json:"items"`
	Added    []models.InventoryItem `json:"added,omitempty"`
	Skipped  []string               `json:"skipped,omitempty"`
}

// ImageService stores photos of food and turns them into inventory items.
type ImageService struct {
	store     ObjectStore
	analyzer  ImageAnalyzer
	inventory *InventoryService
	logger    *zap.Logger
}

// NewImageService creates an image service. store may be nil, in which case
// images are analysed without being kept.
func NewImageService(store ObjectStore, analyzer ImageAnalyzer, inventory *InventoryService, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{store: store, analyzer: analyzer, inventory: inventory, logger: logger}
}

// Analyze stores the image, asks the analyzer what it shows and optionally
// adds the detected items to the user's inventory.
func (s *ImageService) Analyze(ctx context.Context, userID uuid.UUID, data []byte, contentType string, addToInventory bool) (*ImageAnalysis, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, invalid("image", "unsupported image type %q", contentType)
	}
	if len(data) == 0 {
		return nil, invalid("image", "is empty")
	}
	if len(data) > MaxImageSize {
		return nil, invalid("image", "must be at most %d bytes", MaxImageSize)
	}

	result := &ImageAnalysis{}
	if s.store != nil {
		key := path.Join("uploads", userID.String(), uuid.NewString()+ext)
		url, err := s.store.Put(ctx, key, data, contentType)
		if err != nil {
			return nil, err
		}
		result.ImageURL = url
	}

	items, err := s.analyzer.AnalyzeImage(ctx, data, contentType)
	if err != nil {
		return nil, err
	}
	result.Items = items

	if !addToInventory {
		return result, nil
	}
	for _, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		row, err := s.inventory.Add(ctx, userID, it.Name, qty, it.Unit)
		if err != nil {
			s.logger.Info("skipping detected item", zap.String("item", it.Name), zap.Error(err))
			result.Skipped = append(result.Skipped, it.Name)
			continue
		}
		result.Added = append(result.Added, *row)
	}
	return result, nil
}
