package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

// Ledger applies guarded deltas to product stock. The guard runs inside
// the UPDATE itself so concurrent writers can never drive stock below
// zero regardless of interleaving.
type Ledger interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) (*models.Product, error)
}

type ledgerImpl struct {
	db *gorm.DB
}

// NewLedger returns a stock ledger bound to the provided database.
func NewLedger(db *gorm.DB) (Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &ledgerImpl{db: db}, nil
}

func (l *ledgerImpl) ApplyDelta(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock delta must be non-zero")
	}

	conn := l.db
	if tx != nil {
		conn = tx
	}

	res := conn.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock + ? >= 0
	`, delta, productID, delta)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "apply stock delta")
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := conn.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", productID).
			Count(&count).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product existence")
		}
		if count == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": productID,
				"requested":  -delta,
			})
	}

	var product models.Product
	if err := conn.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product after stock delta")
	}
	return &product, nil
}
