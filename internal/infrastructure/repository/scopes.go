package repository

import (
	"github.com/star-temple/starprint/internal/domain/entity"
	"github.com/star-temple/starprint/pkg/pagination"
	"gorm.io/gorm"
)

// StationScope returns a GORM scope that filters by counter station.
// An empty station leaves the query unfiltered.
func StationScope(station string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if station == "" {
			return db
		}
		return db.Where("station = ?", station)
	}
}

// JobStatusScope filters print jobs by outcome.
func JobStatusScope(status entity.PrintJobStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

// Paginate applies offset and limit from validated pagination params.
func Paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}
