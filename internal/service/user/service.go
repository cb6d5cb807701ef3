package user

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	"github.com/odontosys/clinic-api/internal/service/role"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type UserService interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	repo    repository.UserRepository
	roleSvc role.RoleService
}

func NewService(repo repository.UserRepository, roleSvc role.RoleService) *Service {
	return &Service{repo: repo, roleSvc: roleSvc}
}

func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	ref, err := roleRefFromRequest(req.RoleName, req.RoleID)
	if err != nil {
		return nil, err
	}
	if err := s.roleSvc.Resolve(ctx, ref); err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Names:          req.Names,
		Surnames:       req.Surnames,
		Email:          req.Email,
		Status:         req.Status,
		Address:        req.Address,
		Phone:          req.Phone,
		Specialty:      req.Specialty,
		ExternalUserID: req.ExternalUserID,
	}
	if user.Status == "" {
		user.Status = model.UserStatusActive
	}
	applyRoleRef(user, ref)

	if err := validateSpecialty(user); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("email already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create user: %w", err))
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error) {
	filters.Normalize()
	users, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list users: %w", err))
	}
	return users, total, nil
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Names != nil {
		user.Names = *req.Names
	}
	if req.Surnames != nil {
		user.Surnames = *req.Surnames
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, *req.Email); err == nil {
			return nil, apperrors.Conflict("email already exists", nil)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
		user.Email = *req.Email
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Specialty != nil {
		user.Specialty = *req.Specialty
	}

	if req.RoleName != nil || req.RoleID != nil {
		ref, err := roleRefFromRequest(req.RoleName, req.RoleID)
		if err != nil {
			return nil, err
		}
		if err := s.roleSvc.Resolve(ctx, ref); err != nil {
			return nil, apperrors.Internal(err)
		}
		applyRoleRef(user, ref)
	}

	if err := validateSpecialty(user); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update user: %w", err))
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		return apperrors.Internal(fmt.Errorf("failed to delete user: %w", err))
	}
	return nil
}

// roleRefFromRequest builds the resolver input from the request's optional
// role fields. A malformed role_id is a client error, not a lookup miss.
func roleRefFromRequest(name *string, id *string) (*model.RoleRef, error) {
	ref := &model.RoleRef{Name: name}
	if id != nil {
		oid, ok := model.ParseObjectID(*id)
		if !ok {
			return nil, apperrors.BadRequest("malformed role_id", nil)
		}
		ref.ID = &oid
	}
	return ref, nil
}

func applyRoleRef(user *model.User, ref *model.RoleRef) {
	if ref.Name != nil {
		user.RoleName = *ref.Name
	}
	if ref.ID != nil {
		user.RoleID = *ref.ID
	}
}

// validateSpecialty enforces that dentists carry a non-empty specialty list.
func validateSpecialty(user *model.User) error {
	if user.RoleName == string(model.RoleDentist) && len(user.Specialty) == 0 {
		return apperrors.BadRequest("specialty is required for dentists", nil)
	}
	return nil
}
