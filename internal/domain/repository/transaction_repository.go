package repository

import (
	"context"

	"github.com/star-temple/starprint/internal/domain/entity"
)

// TransactionRepository reads booked transactions owned by the booking backend.
type TransactionRepository interface {
	// GetWithDetails returns the transaction with its seva and devotee loaded.
	// It returns (nil, nil) when no transaction has that id.
	GetWithDetails(ctx context.Context, id int) (*entity.Transaction, error)
}
