package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
)

// Actor identifies who is asking for an order operation so ownership
// checks can be enforced in one place.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service exposes order reads and fulfilment status updates. Placement
// and cancellation live in the settlement package because they touch
// stock.
type Service interface {
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Order, error)
	UpdateDeliveryStatus(ctx context.Context, actor Actor, orderID uuid.UUID, next enums.DeliveryStatus) (*models.Order, error)
}

type service struct {
	repo Repository
}

// NewService wires an order service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Order, error) {
	switch actor.Role {
	case enums.UserRoleAdmin:
		// admins see everything; the filter passes through untouched
	case enums.UserRoleFarmer:
		filter.FarmerID = actor.UserID
		filter.UserID = uuid.Nil
	default:
		filter.UserID = actor.UserID
		filter.FarmerID = uuid.Nil
	}
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateDeliveryStatus(ctx context.Context, actor Actor, orderID uuid.UUID, next enums.DeliveryStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery status %q", next))
	}
	if next == enums.DeliveryStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancellation must go through the cancel operation")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if actor.Role != enums.UserRoleAdmin {
		if actor.Role != enums.UserRoleFarmer || order.FarmerID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the fulfilling farmer can update delivery status")
		}
	}

	if !order.DeliveryStatus.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move delivery from %s to %s", order.DeliveryStatus, next))
	}

	order.DeliveryStatus = next
	if next == enums.DeliveryStatusDelivered {
		now := time.Now().UTC()
		order.DeliveredAt = &now
		// COD money changes hands at the doorstep
		if order.PaymentMethod == enums.PaymentMethodCOD && order.PaymentStatus == enums.PaymentStatusPending {
			order.PaymentStatus = enums.PaymentStatusCompleted
		}
	}

	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return order, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func authorize(actor Actor, order *models.Order) error {
	switch actor.Role {
	case enums.UserRoleAdmin:
		return nil
	case enums.UserRoleFarmer:
		if order.FarmerID == actor.UserID {
			return nil
		}
	default:
		if order.UserID == actor.UserID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
}
