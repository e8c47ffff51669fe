package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/muralianand12345/AI-API/internal/model"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(upload *model.Upload) error {
	if err := r.db.Create(upload).Error; err != nil {
		return fmt.Errorf("create upload record failed: %w", err)
	}
	return nil
}

func (r *UploadRepository) ListByUsername(username string) ([]model.Upload, error) {
	var uploads []model.Upload
	if err := r.db.Where("username = ?", username).Order("id ASC").Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("list uploads by username failed: %w", err)
	}
	return uploads, nil
}
