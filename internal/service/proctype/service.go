package proctype

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type ProcedureTypeService interface {
	Create(ctx context.Context, req *model.CreateProcedureTypeRequest) (*model.ProcedureType, error)
	Get(ctx context.Context, id primitive.ObjectID) (*model.ProcedureType, error)
	List(ctx context.Context, filters *model.ProcedureTypeFilters) ([]*model.ProcedureType, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateProcedureTypeRequest) (*model.ProcedureType, error)
	Delete(ctx context.Context, id primitive.ObjectID, force bool) error
}

type Service struct {
	repo     repository.ProcedureTypeRepository
	apptRepo repository.AppointmentRepository
}

func NewService(repo repository.ProcedureTypeRepository, apptRepo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, apptRepo: apptRepo}
}

func (s *Service) Create(ctx context.Context, req *model.CreateProcedureTypeRequest) (*model.ProcedureType, error) {
	if _, err := s.repo.GetByName(ctx, req.Name); err == nil {
		return nil, apperrors.Conflict("procedure type name already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	pt := &model.ProcedureType{
		Name:   req.Name,
		Cost:   req.Cost,
		Active: true,
	}
	if req.Active != nil {
		pt.Active = *req.Active
	}
	if err := s.repo.Create(ctx, pt); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create procedure type: %w", err))
	}
	return pt, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.ProcedureType, error) {
	pt, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("procedure type", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return pt, nil
}

func (s *Service) List(ctx context.Context, filters *model.ProcedureTypeFilters) ([]*model.ProcedureType, int64, error) {
	filters.Normalize()
	types, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list procedure types: %w", err))
	}
	return types, total, nil
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateProcedureTypeRequest) (*model.ProcedureType, error) {
	pt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != pt.Name {
		if _, err := s.repo.GetByName(ctx, *req.Name); err == nil {
			return nil, apperrors.Conflict("procedure type name already exists", nil)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
		pt.Name = *req.Name
	}
	if req.Cost != nil {
		pt.Cost = *req.Cost
	}
	if req.Active != nil {
		pt.Active = *req.Active
	}

	if err := s.repo.Update(ctx, pt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("procedure type", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update procedure type: %w", err))
	}
	return pt, nil
}

// Delete blocks while any appointment's legacy line item still references
// the procedure by name, unless force is supplied.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, force bool) error {
	pt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !force {
		inUse, err := s.apptRepo.CountByLineItemName(ctx, pt.Name)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("failed to count procedure references: %w", err))
		}
		if inUse > 0 {
			return apperrors.Conflict("procedure type is referenced", map[string]int{"appointments": int(inUse)})
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("procedure type", err)
		}
		return apperrors.Internal(fmt.Errorf("failed to delete procedure type: %w", err))
	}
	return nil
}
