package repository

import (
	"context"

	"github.com/star-temple/starprint/internal/domain/entity"
	domainRepo "github.com/star-temple/starprint/internal/domain/repository"
	"gorm.io/gorm"
)

type printJobRepository struct {
	db *gorm.DB
}

// NewPrintJobRepository creates a new print job repository
func NewPrintJobRepository(db *gorm.DB) domainRepo.PrintJobRepository {
	return &printJobRepository{db: db}
}

func (r *printJobRepository) Create(ctx context.Context, job *entity.PrintJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *printJobRepository) List(ctx context.Context, params *domainRepo.PrintJobFilterParams) ([]entity.PrintJob, int64, error) {
	var jobs []entity.PrintJob
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.PrintJob{}).
		Scopes(StationScope(params.Station), JobStatusScope(params.Status))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Scopes(Paginate(&params.PaginationParams)).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}
