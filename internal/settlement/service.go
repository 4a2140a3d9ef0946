package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/internal/inventory"
	"github.com/farmfresh-in/farmfresh-backend/internal/orders"
	"github.com/farmfresh-in/farmfresh-backend/internal/payments"
	"github.com/farmfresh-in/farmfresh-backend/internal/settlement/unitofwork"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
	"github.com/farmfresh-in/farmfresh-backend/pkg/metrics"
)

const (
	workflowCOD    = "cod"
	workflowOnline = "online"
	workflowCancel = "cancel"
)

// Service coordinates order placement and cancellation. Every stock
// movement it makes goes through the ledger and leaves an audit record
// inside the same unit of work.
type Service interface {
	PlaceCOD(ctx context.Context, input PlaceInput) (*models.Order, error)
	PlacePaid(ctx context.Context, input PaidPlaceInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
}

type service struct {
	exec      unitofwork.Executor
	orderRepo orders.Repository
	inventory inventory.Service
	ledger    inventory.Ledger
	verifier  payments.Verifier
	metrics   *metrics.SettlementMetrics
	logg      *logger.Logger
}

// NewService wires the settlement coordinator.
func NewService(
	exec unitofwork.Executor,
	orderRepo orders.Repository,
	inv inventory.Service,
	ledger inventory.Ledger,
	verifier payments.Verifier,
	m *metrics.SettlementMetrics,
	logg *logger.Logger,
) (Service, error) {
	if exec == nil {
		return nil, fmt.Errorf("unit of work executor required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("payment verifier required")
	}
	return &service{
		exec:      exec,
		orderRepo: orderRepo,
		inventory: inv,
		ledger:    ledger,
		verifier:  verifier,
		metrics:   m,
		logg:      logg,
	}, nil
}

func (s *service) PlaceCOD(ctx context.Context, input PlaceInput) (*models.Order, error) {
	started := time.Now()
	order, err := s.place(ctx, input, enums.PaymentMethodCOD, nil, nil)
	s.observe(workflowCOD, started, err)
	return order, err
}

func (s *service) PlacePaid(ctx context.Context, input PaidPlaceInput) (*models.Order, error) {
	started := time.Now()

	// The gate runs before any database work. A bad signature must
	// leave no trace at all.
	if !s.verifier.Verify(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		s.metrics.IncFailed(workflowOnline, "verification_failed")
		if s.logg != nil {
			s.logg.Warn(ctx, "payment signature verification failed")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment verification failed")
	}

	// A replayed verification callback settles nothing twice; the
	// order created for this gateway order id the first time wins.
	existing, err := s.orderRepo.GetByGatewayOrderID(ctx, input.GatewayOrderID)
	if err == nil {
		if existing.UserID != input.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "gateway order already settled")
		}
		if s.logg != nil {
			s.logg.Info(ctx, "payment verification replay, returning settled order")
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gateway order")
	}

	order, err := s.place(ctx, input.PlaceInput, enums.PaymentMethodOnline, &input.GatewayOrderID, &input.GatewayPaymentID)
	s.observe(workflowOnline, started, err)
	return order, err
}

func (s *service) place(ctx context.Context, input PlaceInput, method enums.PaymentMethod, gatewayOrderID, gatewayPaymentID *string) (*models.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var placed *models.Order
	err := s.exec.Run(ctx, func(tx *gorm.DB) error {
		loaded := make([]*models.Product, 0, len(input.Items))
		var farmerID uuid.UUID
		total := decimal.Zero

		for _, item := range input.Items {
			var product models.Product
			if err := tx.WithContext(ctx).First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]any{"product_id": item.ProductID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s is no longer available", product.Name))
			}
			if farmerID == uuid.Nil {
				farmerID = product.FarmerID
			} else if farmerID != product.FarmerID {
				return pkgerrors.New(pkgerrors.CodeValidation, "all items must come from the same farmer")
			}

			loaded = append(loaded, &product)
			// prices come from the catalog, never the request
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		paymentStatus := enums.PaymentStatusPending
		if method == enums.PaymentMethodOnline {
			paymentStatus = enums.PaymentStatusCompleted
		}

		order := &models.Order{
			ID:               uuid.New(),
			UserID:           input.UserID,
			FarmerID:         farmerID,
			TotalPrice:       total,
			PaymentMethod:    method,
			PaymentStatus:    paymentStatus,
			DeliveryStatus:   enums.DeliveryStatusPending,
			DeliveryAddress:  input.Address,
			GatewayOrderID:   gatewayOrderID,
			GatewayPaymentID: gatewayPaymentID,
		}
		for i, item := range input.Items {
			order.Items = append(order.Items, models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Name:      loaded[i].Name,
				Quantity:  item.Quantity,
				UnitPrice: loaded[i].Price,
			})
		}

		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, item := range input.Items {
			product, err := s.ledger.ApplyDelta(ctx, tx, item.ProductID, -item.Quantity)
			if err != nil {
				return err
			}
			if _, err := s.inventory.Record(ctx, tx, inventory.RecordInput{
				ProductID:     product.ID,
				FarmerID:      product.FarmerID,
				OrderID:       &order.ID,
				ActorUserID:   &input.UserID,
				Type:          enums.InventoryLogOrderPlaced,
				Quantity:      -item.Quantity,
				PreviousStock: product.Stock + item.Quantity,
				NewStock:      product.Stock,
			}); err != nil {
				return err
			}
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	started := time.Now()
	order, err := s.cancel(ctx, input)
	s.observe(workflowCancel, started, err)
	return order, err
}

func (s *service) cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor user id is required")
	}

	var cancelled *models.Order
	err := s.exec.Run(ctx, func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).GetByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !input.IsAdmin && order.UserID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
		}

		switch order.DeliveryStatus {
		case enums.DeliveryStatusCancelled:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
		case enums.DeliveryStatusShipped, enums.DeliveryStatusDelivered:
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot cancel a %s order", order.DeliveryStatus))
		}

		for _, item := range order.Items {
			product, err := s.ledger.ApplyDelta(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if _, err := s.inventory.Record(ctx, tx, inventory.RecordInput{
				ProductID:     product.ID,
				FarmerID:      product.FarmerID,
				OrderID:       &order.ID,
				ActorUserID:   &input.ActorUserID,
				Type:          enums.InventoryLogOrderCancelled,
				Quantity:      item.Quantity,
				PreviousStock: product.Stock - item.Quantity,
				NewStock:      product.Stock,
				Reason:        input.Reason,
			}); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		order.DeliveryStatus = enums.DeliveryStatusCancelled
		order.PaymentStatus = enums.PaymentStatusFailed
		order.CancelledAt = &now

		if err := s.orderRepo.WithTx(tx).Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cancelled order")
		}

		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) observe(workflow string, started time.Time, err error) {
	s.metrics.ObserveDuration(workflow, time.Since(started))
	if err == nil {
		s.metrics.IncPlaced(workflow)
		return
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		s.metrics.IncOversell(workflow)
	}
	s.metrics.IncFailed(workflow, string(failureReason(err)))
}

func failureReason(err error) pkgerrors.Code {
	if appErr := pkgerrors.As(err); appErr != nil {
		return appErr.Code()
	}
	return pkgerrors.CodeInternal
}
