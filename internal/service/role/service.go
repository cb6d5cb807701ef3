package role

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type RoleService interface {
	Seed(ctx context.Context) error
	Resolve(ctx context.Context, ref *model.RoleRef) error
	Create(ctx context.Context, req *model.CreateRoleRequest) (*model.Role, error)
	Get(ctx context.Context, id primitive.ObjectID) (*model.Role, error)
	List(ctx context.Context) ([]*model.Role, error)
	Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateRoleRequest) (*model.Role, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Catalog() []model.RoleName
}

type Service struct {
	repo     repository.RoleRepository
	userRepo repository.UserRepository
}

func NewService(repo repository.RoleRepository, userRepo repository.UserRepository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// Seed populates the role catalog with the fixed closed set when the
// collection is empty. It never runs again once the collection is non-empty,
// even if the fixed set later changes in code.
func (s *Service) Seed(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count roles: %w", err)
	}
	if count > 0 {
		return nil
	}

	roles := make([]*model.Role, 0, len(model.RoleCatalog()))
	for _, name := range model.RoleCatalog() {
		roles = append(roles, &model.Role{
			Name:        name,
			Description: model.RoleSeedDescriptions[name],
			Permissions: []string{},
		})
	}
	if err := s.repo.InsertMany(ctx, roles); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	return nil
}

// Resolve reconciles a record's role_name/role_id pair against the catalog.
// The identifier wins over a possibly-stale display name whenever both are
// present and the identifier resolves; a name that is not in the closed
// enumeration passes through untouched so schema validation can reject it.
func (s *Service) Resolve(ctx context.Context, ref *model.RoleRef) error {
	switch {
	case ref.ID == nil && ref.Name == nil:
		return nil

	case ref.ID != nil && ref.Name == nil:
		role, err := s.repo.Get(ctx, *ref.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve role by id: %w", err)
		}
		name := string(role.Name)
		ref.Name = &name
		return nil

	case ref.ID == nil && ref.Name != nil:
		if !model.ValidRoleName(*ref.Name) {
			return nil
		}
		role, err := s.repo.GetByName(ctx, *ref.Name)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve role by name: %w", err)
		}
		id := role.ID
		ref.ID = &id
		return nil

	default:
		role, err := s.repo.Get(ctx, *ref.ID)
		if err == nil {
			name := string(role.Name)
			ref.Name = &name
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to resolve role by id: %w", err)
		}
		if !model.ValidRoleName(*ref.Name) {
			return nil
		}
		byName, err := s.repo.GetByName(ctx, *ref.Name)
		if errors.Is(err, repository.ErrNotFound) {
			// Name does not resolve either; the original role_id stays
			// untouched.
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to resolve role by name: %w", err)
		}
		id := byName.ID
		ref.ID = &id
		return nil
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateRoleRequest) (*model.Role, error) {
	if _, err := s.repo.GetByName(ctx, req.Name); err == nil {
		return nil, apperrors.Conflict("role name already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	role := &model.Role{
		Name:        model.RoleName(req.Name),
		Description: req.Description,
		Permissions: req.Permissions,
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create role: %w", err))
	}
	return role, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.Role, error) {
	role, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("role", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return role, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list roles: %w", err))
	}
	return roles, nil
}

// Update mutates description and permissions only; the name is immutable
// post-creation.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateRoleRequest) (*model.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Permissions != nil {
		role.Permissions = *req.Permissions
	}

	if err := s.repo.Update(ctx, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("role", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update role: %w", err))
	}
	return role, nil
}

// Delete refuses while any user still references the role, by id or by
// denormalized name. There is no force override for roles.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.userRepo.CountByRole(ctx, role.ID, string(role.Name))
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to count role references: %w", err))
	}
	if inUse > 0 {
		return apperrors.Conflict("role is in use", map[string]int{"users": int(inUse)})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("role", err)
		}
		return apperrors.Internal(fmt.Errorf("failed to delete role: %w", err))
	}
	return nil
}

// Catalog returns the fixed closed enumeration of role names.
func (s *Service) Catalog() []model.RoleName {
	return model.RoleCatalog()
}
