package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/internal/settlement/unitofwork"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

// RecordInput captures a single audit record. Quantity is signed and
// NewStock must equal PreviousStock + Quantity.
type RecordInput struct {
	ProductID     uuid.UUID
	FarmerID      uuid.UUID
	OrderID       *uuid.UUID
	ActorUserID   *uuid.UUID
	Type          enums.InventoryLogType
	Quantity      int
	PreviousStock int
	NewStock      int
	Reason        *string
}

// AdjustInput describes a manual stock correction by a farmer.
type AdjustInput struct {
	ProductID   uuid.UUID
	FarmerID    uuid.UUID
	ActorUserID uuid.UUID
	Delta       int
	Reason      *string
}

// Service couples the stock ledger with its append-only audit trail.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.InventoryLog, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.Product, error)
	ListLogs(ctx context.Context, filter LogFilter) ([]models.InventoryLog, error)
}

type service struct {
	ledger Ledger
	logs   LogRepository
	exec   unitofwork.Executor
}

// NewService wires the inventory service.
func NewService(ledger Ledger, logs LogRepository, exec unitofwork.Executor) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if logs == nil {
		return nil, fmt.Errorf("log repository required")
	}
	if exec == nil {
		return nil, fmt.Errorf("unit of work executor required")
	}
	return &service{ledger: ledger, logs: logs, exec: exec}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.InventoryLog, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid inventory log type %q", input.Type))
	}
	if input.NewStock != input.PreviousStock+input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "inventory log does not balance").
			WithDetails(map[string]any{
				"previous_stock": input.PreviousStock,
				"quantity":       input.Quantity,
				"new_stock":      input.NewStock,
			})
	}
	if input.NewStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "inventory log records negative stock")
	}

	record := &models.InventoryLog{
		ID:            uuid.New(),
		ProductID:     input.ProductID,
		FarmerID:      input.FarmerID,
		OrderID:       input.OrderID,
		ActorUserID:   input.ActorUserID,
		Type:          input.Type,
		Quantity:      input.Quantity,
		PreviousStock: input.PreviousStock,
		NewStock:      input.NewStock,
		Reason:        input.Reason,
	}

	if err := s.logs.WithTx(tx).Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory log")
	}
	return record, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.Product, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id is required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock delta must be non-zero")
	}

	logType := enums.InventoryLogStockAdded
	if input.Delta < 0 {
		logType = enums.InventoryLogStockReduced
	}

	var updated *models.Product
	err := s.exec.Run(ctx, func(tx *gorm.DB) error {
		// Ownership is checked before the delta so the best-effort
		// variant never mutates a foreign product.
		var current models.Product
		if err := tx.WithContext(ctx).First(&current, "id = ?", input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if current.FarmerID != input.FarmerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another farmer")
		}

		product, err := s.ledger.ApplyDelta(ctx, tx, input.ProductID, input.Delta)
		if err != nil {
			return err
		}

		actor := input.ActorUserID
		if _, err := s.Record(ctx, tx, RecordInput{
			ProductID:     product.ID,
			FarmerID:      product.FarmerID,
			ActorUserID:   &actor,
			Type:          logType,
			Quantity:      input.Delta,
			PreviousStock: product.Stock - input.Delta,
			NewStock:      product.Stock,
			Reason:        input.Reason,
		}); err != nil {
			return err
		}

		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListLogs(ctx context.Context, filter LogFilter) ([]models.InventoryLog, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLogLimit
	}
	if filter.Limit > maxLogLimit {
		filter.Limit = maxLogLimit
	}
	return s.logs.List(ctx, filter)
}
