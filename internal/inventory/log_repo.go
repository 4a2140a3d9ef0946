package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
)

// LogFilter narrows audit log listings. Zero values mean "no filter".
type LogFilter struct {
	ProductID uuid.UUID
	FarmerID  uuid.UUID
	OrderID   uuid.UUID
	Type      enums.InventoryLogType
	Limit     int
}

// LogRepository manages persistence for inventory audit records. The
// table is append-only; there are no update or delete operations.
type LogRepository interface {
	WithTx(tx *gorm.DB) LogRepository
	Create(ctx context.Context, record *models.InventoryLog) error
	List(ctx context.Context, filter LogFilter) ([]models.InventoryLog, error)
}

type logRepository struct {
	db *gorm.DB
}

// NewLogRepository returns a log repository bound to the provided database.
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) WithTx(tx *gorm.DB) LogRepository {
	if tx == nil {
		return r
	}
	return &logRepository{db: tx}
}

func (r *logRepository) Create(ctx context.Context, record *models.InventoryLog) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *logRepository) List(ctx context.Context, filter LogFilter) ([]models.InventoryLog, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryLog{})
	if filter.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.FarmerID != uuid.Nil {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}
	if filter.OrderID != uuid.Nil {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []models.InventoryLog
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
