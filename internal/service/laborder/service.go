package laborder

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type LabOrderService interface {
	Create(ctx context.Context, req *model.CreateLabOrderRequest) (*model.LabOrder, error)
	Get(ctx context.Context, id primitive.ObjectID) (*model.LabOrder, error)
	List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateLabOrderRequest) (*model.LabOrder, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	repo     repository.LabOrderRepository
	apptRepo repository.AppointmentRepository
	validate *validator.Validate
}

func NewService(repo repository.LabOrderRepository, apptRepo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, apptRepo: apptRepo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req *model.CreateLabOrderRequest) (*model.LabOrder, error) {
	apptID, ok := model.ParseObjectID(req.AppointmentID)
	if !ok {
		return nil, apperrors.BadRequest("malformed appointment_id", nil)
	}
	userID, ok := model.ParseObjectID(req.UserID)
	if !ok {
		return nil, apperrors.BadRequest("malformed user_id", nil)
	}

	if _, err := s.apptRepo.Get(ctx, apptID); errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("appointment", err)
	} else if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.validateProducts(req.Products); err != nil {
		return nil, err
	}

	order := &model.LabOrder{
		AppointmentID: apptID,
		UserID:        userID,
		Status:        model.LabOrderStatus(req.Status),
		Products:      req.Products,
		Notes:         req.Notes,
	}
	if order.Status == "" {
		order.Status = model.LabOrderStatusPending
	}
	if order.Products == nil {
		order.Products = []model.Product{}
	}
	if order.Notes.Kind == "" {
		order.Notes = model.NormalizeNotes(nil)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create lab order: %w", err))
	}
	return order, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.LabOrder, error) {
	order, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("lab order", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, int64, error) {
	filters.Normalize()
	orders, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list lab orders: %w", err))
	}
	return orders, total, nil
}

// Update applies scalar changes and at most one products array operation.
// The whole request is vetted against the fetched order before anything is
// written, so a request combining a scalar change with a bad array operation
// leaves the stored order untouched.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateLabOrderRequest) (*model.LabOrder, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkProductsOp(order, req); err != nil {
		return nil, err
	}

	scalarsChanged := false
	if req.Status != nil {
		order.Status = model.LabOrderStatus(*req.Status)
		scalarsChanged = true
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
		scalarsChanged = true
	}
	if scalarsChanged {
		if err := s.repo.Update(ctx, order); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("lab order", err)
			}
			return nil, apperrors.Internal(fmt.Errorf("failed to update lab order: %w", err))
		}
	}

	switch req.Op {
	case "":
		return order, nil
	case model.LabOrderOpReplace:
		return s.replaceProducts(ctx, order, req.Products)
	case model.LabOrderOpAppend:
		return s.appendProducts(ctx, order, req.Products)
	case model.LabOrderOpPatchAtIndex:
		return s.patchProduct(ctx, order, *req.Index, req.Patch)
	case model.LabOrderOpDeleteAtIndex:
		return s.deleteProduct(ctx, order, *req.Index)
	default:
		return nil, apperrors.BadRequest("unknown products operation", nil)
	}
}

// checkProductsOp vets the requested products operation against the current
// order without writing anything. A patch at an out-of-range index reports
// not-found here, before scalar changes land.
func (s *Service) checkProductsOp(order *model.LabOrder, req *model.UpdateLabOrderRequest) error {
	switch req.Op {
	case "":
		return nil
	case model.LabOrderOpReplace:
		return s.validateProducts(req.Products)
	case model.LabOrderOpAppend:
		if len(req.Products) == 0 {
			return apperrors.BadRequest("append operation requires products", nil)
		}
		return s.validateProducts(req.Products)
	case model.LabOrderOpPatchAtIndex:
		if req.Index == nil || req.Patch == nil {
			return apperrors.BadRequest("patch operation requires index and patch", nil)
		}
		if *req.Index < 0 || *req.Index >= len(order.Products) {
			return apperrors.NotFound("index out of range: product", nil)
		}
		merged := mergeProduct(order.Products[*req.Index], req.Patch)
		if err := s.validate.Struct(merged); err != nil {
			return apperrors.BadRequest("invalid product", err)
		}
		return nil
	case model.LabOrderOpDeleteAtIndex:
		if req.Index == nil {
			return apperrors.BadRequest("delete operation requires index", nil)
		}
		if *req.Index < 0 {
			return apperrors.BadRequest("index must be non-negative", nil)
		}
		return nil
	default:
		return apperrors.BadRequest("unknown products operation", nil)
	}
}

func (s *Service) validateProducts(products []model.Product) error {
	for _, product := range products {
		if err := s.validate.Struct(product); err != nil {
			return apperrors.BadRequest("invalid product", err)
		}
	}
	return nil
}

func mergeProduct(base model.Product, patch *model.ProductPatch) model.Product {
	if patch.ProductType != nil {
		base.ProductType = *patch.ProductType
	}
	if patch.Specifications != nil {
		base.Specifications = *patch.Specifications
	}
	if patch.Quantity != nil {
		base.Quantity = *patch.Quantity
	}
	return base
}

func (s *Service) replaceProducts(ctx context.Context, order *model.LabOrder, products []model.Product) (*model.LabOrder, error) {
	if products == nil {
		products = []model.Product{}
	}
	if err := s.repo.SetProducts(ctx, order.ID, products); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to replace products: %w", err))
	}
	order.Products = products
	return order, nil
}

func (s *Service) appendProducts(ctx context.Context, order *model.LabOrder, products []model.Product) (*model.LabOrder, error) {
	if err := s.repo.PushProducts(ctx, order.ID, products); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to append products: %w", err))
	}
	order.Products = append(order.Products, products...)
	return order, nil
}

// patchProduct writes the merged product back positionally. The merge was
// validated by checkProductsOp before any write.
func (s *Service) patchProduct(ctx context.Context, order *model.LabOrder, index int, patch *model.ProductPatch) (*model.LabOrder, error) {
	merged := mergeProduct(order.Products[index], patch)
	if err := s.repo.SetProduct(ctx, order.ID, index, merged); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to patch product: %w", err))
	}
	order.Products[index] = merged
	return order, nil
}

// deleteProduct uses the two-phase blank-then-compact protocol. Deleting at
// or beyond the current length is a reported-success no-op.
func (s *Service) deleteProduct(ctx context.Context, order *model.LabOrder, index int) (*model.LabOrder, error) {
	if index >= len(order.Products) {
		return order, nil
	}

	if err := s.repo.BlankProduct(ctx, order.ID, index); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to blank product: %w", err))
	}
	if err := s.repo.CompactProducts(ctx, order.ID); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to compact products: %w", err))
	}
	order.Products = append(order.Products[:index], order.Products[index+1:]...)
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("lab order", err)
		}
		return apperrors.Internal(fmt.Errorf("failed to delete lab order: %w", err))
	}
	return nil
}
