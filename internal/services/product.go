package services

import (
	"context"
	"mime/multipart"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
	"reviewhub/internal/permissions"
)

type ProductService struct {
	db *gorm.DB
	s3 *S3Service
}

func NewProductService(db *gorm.DB, s3 *S3Service) *ProductService {
	return &ProductService{db: db, s3: s3}
}

type ProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// ProductResponse carries a product with its rating aggregates. The average
// covers visible reviews only and is 0.0, never null, when there are none.
type ProductResponse struct {
	models.Product
	AverageRating float64 `json:"average_rating"`
	ReviewsCount  int64   `json:"reviews_count"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

func (s *ProductService) Create(ctx context.Context, actor permissions.Actor, req ProductRequest) (*models.Product, error) {
	if err := permissions.Check(permissions.OpProductWrite, actor, nil); err != nil {
		return nil, err
	}
	if req.Price < 0 {
		return nil, apperrors.ValidationFields("invalid product", map[string]string{
			"price": "price cannot be negative",
		})
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, apperrors.Internal("failed to create product", err)
	}
	return &product, nil
}

func (s *ProductService) Get(ctx context.Context, productID uint) (*ProductResponse, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Preload("Images").First(&product, productID).Error; err != nil {
		return nil, apperrors.NotFound("product not found")
	}

	responses, err := s.withAggregates(ctx, []models.Product{product})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *ProductService) List(ctx context.Context, page, limit int) (*ProductListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, apperrors.Internal("failed to count products", err)
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Images").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch products", err)
	}

	responses, err := s.withAggregates(ctx, products)
	if err != nil {
		return nil, err
	}

	return &ProductListResponse{
		Products: responses,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func (s *ProductService) Update(ctx context.Context, actor permissions.Actor, productID uint, req UpdateProductRequest) (*models.Product, error) {
	if err := permissions.Check(permissions.OpProductWrite, actor, nil); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, apperrors.NotFound("product not found")
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperrors.ValidationFields("invalid product", map[string]string{
				"price": "price cannot be negative",
			})
		}
		updates["price"] = *req.Price
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update product", err)
		}
	}
	return &product, nil
}

// Delete removes a product and, by foreign-key policy, its reviews and their
// children.
func (s *ProductService) Delete(ctx context.Context, actor permissions.Actor, productID uint) error {
	if err := permissions.Check(permissions.OpProductWrite, actor, nil); err != nil {
		return err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return apperrors.NotFound("product not found")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reviewIDs []uint
		if err := tx.Model(&models.Review{}).
			Where("product_id = ?", productID).
			Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		if len(reviewIDs) > 0 {
			for _, child := range []interface{}{&models.ReviewComment{}, &models.Interaction{}, &models.Report{}} {
				if err := tx.Where("review_id IN ?", reviewIDs).Delete(child).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("id IN ?", reviewIDs).Delete(&models.Review{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return apperrors.Internal("failed to delete product", err)
	}
	return nil
}

// UploadImages stores product images in S3 and records them.
func (s *ProductService) UploadImages(ctx context.Context, actor permissions.Actor, productID uint, files []*multipart.FileHeader) ([]models.ProductImage, error) {
	if err := permissions.Check(permissions.OpProductWrite, actor, nil); err != nil {
		return nil, err
	}
	if s.s3 == nil {
		return nil, apperrors.Validation("image storage is not configured")
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, apperrors.NotFound("product not found")
	}

	results, err := s.s3.UploadImages(files)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	images := make([]models.ProductImage, 0, len(results))
	for _, r := range results {
		images = append(images, models.ProductImage{
			ProductID:   productID,
			FileName:    r.FileName,
			S3Key:       r.Key,
			S3URL:       r.URL,
			ContentType: r.ContentType,
			Size:        r.Size,
		})
	}
	if err := s.db.WithContext(ctx).Create(&images).Error; err != nil {
		// Keep storage consistent with the database.
		var keys []string
		for _, r := range results {
			keys = append(keys, r.Key)
		}
		s.s3.DeleteImages(keys)
		return nil, apperrors.Internal("failed to record images", err)
	}

	return images, nil
}

// withAggregates computes average rating and visible-review counts for a
// batch of products in one grouped query.
func (s *ProductService) withAggregates(ctx context.Context, products []models.Product) ([]ProductResponse, error) {
	responses := make([]ProductResponse, 0, len(products))
	if len(products) == 0 {
		return responses, nil
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	type aggRow struct {
		ProductID uint
		AvgRating float64
		Count     int64
	}
	var rows []aggRow
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("product_id, AVG(rating) as avg_rating, COUNT(*) as count").
		Where("product_id IN ? AND is_visible = ?", ids, true).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Internal("failed to compute rating aggregates", err)
	}

	byProduct := make(map[uint]aggRow, len(rows))
	for _, r := range rows {
		byProduct[r.ProductID] = r
	}

	for _, p := range products {
		response := ProductResponse{Product: p}
		if agg, ok := byProduct[p.ID]; ok {
			response.AverageRating = round2(agg.AvgRating)
			response.ReviewsCount = agg.Count
		}
		responses = append(responses, response)
	}
	return responses, nil
}
