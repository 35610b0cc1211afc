package leads

import (
	"context"

	"elite-gym/internal/models"

	"gorm.io/gorm"
)

// Recorder stores hand-off audit rows.
type Recorder interface {
	Record(ctx context.Context, d *models.Dispatch) error
}

// GormRecorder writes audit rows with gorm.
type GormRecorder struct {
	DB *gorm.DB
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{DB: db}
}

func (r *GormRecorder) Record(ctx context.Context, d *models.Dispatch) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

// Recent lists the latest audit rows, newest first.
func (r *GormRecorder) Recent(ctx context.Context, limit int) ([]models.Dispatch, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.Dispatch
	err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}
