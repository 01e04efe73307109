package repository

import (
	"context"

	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/pkg/pagination"
)

// PrintJobFilterParams narrows a print job listing.
type PrintJobFilterParams struct {
	pagination.PaginationParams
	Station string                `form:"station"`
	Status  entity.PrintJobStatus `form:"status"`
}

// PrintJobRepository stores the print audit log.
type PrintJobRepository interface {
	Create(ctx context.Context, job *entity.PrintJob) error
	// List returns jobs newest first along with the total matching count.
	List(ctx context.Context, params *PrintJobFilterParams) ([]entity.PrintJob, int64, error)
}
