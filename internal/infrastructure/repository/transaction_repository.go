package repository

import (
	"context"
	"errors"

	"github.com/star-temple/starprint/internal/domain/entity"
	domainRepo "github.com/star-temple/starprint/internal/domain/repository"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a read-only transaction repository.
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) GetWithDetails(ctx context.Context, id int) (*entity.Transaction, error) {
	var tx entity.Transaction
	err := r.db.WithContext(ctx).
		Preload("Seva").
		Preload("Devotee").
		First(&tx, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
