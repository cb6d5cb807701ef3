package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type fakeUserRepo struct {
	users map[primitive.ObjectID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _ *model.UserFilters) ([]*model.User, int64, error) {
	out := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, roleID primitive.ObjectID, roleName string) (int64, error) {
	var n int64
	for _, user := range r.users {
		if user.RoleID == roleID || user.RoleName == roleName {
			n++
		}
	}
	return n, nil
}

// fakeRoleService resolves against a fixed name/id pair.
type fakeRoleService struct {
	name string
	id   primitive.ObjectID
}

func (f *fakeRoleService) Seed(context.Context) error { return nil }

func (f *fakeRoleService) Resolve(_ context.Context, ref *model.RoleRef) error {
	if ref.ID != nil && *ref.ID == f.id {
		name := f.name
		ref.Name = &name
		return nil
	}
	if ref.Name != nil && *ref.Name == f.name {
		id := f.id
		ref.ID = &id
	}
	return nil
}

func (f *fakeRoleService) Create(context.Context, *model.CreateRoleRequest) (*model.Role, error) {
	return nil, nil
}

func (f *fakeRoleService) Get(context.Context, primitive.ObjectID) (*model.Role, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeRoleService) List(context.Context) ([]*model.Role, error) { return nil, nil }

func (f *fakeRoleService) Update(context.Context, primitive.ObjectID, *model.UpdateRoleRequest) (*model.Role, error) {
	return nil, nil
}

func (f *fakeRoleService) Delete(context.Context, primitive.ObjectID) error { return nil }

func (f *fakeRoleService) Catalog() []model.RoleName { return model.RoleCatalog() }

func strPtr(s string) *string { return &s }

func TestCreateResolvesRoleNameToID(t *testing.T) {
	dentistID := primitive.NewObjectID()
	svc := NewService(newFakeUserRepo(), &fakeRoleService{name: "Dentist", id: dentistID})

	user, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Names:     "Carlos",
		Surnames:  "Mora",
		Email:     "cmora@clinic.ec",
		RoleName:  strPtr("Dentist"),
		Specialty: []string{"endodoncia"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dentist", user.RoleName)
	assert.Equal(t, dentistID, user.RoleID)
	assert.Equal(t, model.UserStatusActive, user.Status)
}

func TestCreateResolvesRoleIDToName(t *testing.T) {
	adminID := primitive.NewObjectID()
	svc := NewService(newFakeUserRepo(), &fakeRoleService{name: "Admin", id: adminID})

	user, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Names:    "Lucia",
		Surnames: "Paz",
		Email:    "lpaz@clinic.ec",
		RoleID:   strPtr(adminID.Hex()),
	})
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.RoleName)
}

func TestCreateRejectsMalformedRoleID(t *testing.T) {
	svc := NewService(newFakeUserRepo(), &fakeRoleService{})

	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Names:    "Lucia",
		Surnames: "Paz",
		Email:    "lpaz@clinic.ec",
		RoleID:   strPtr("zzz"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCreateDentistRequiresSpecialty(t *testing.T) {
	dentistID := primitive.NewObjectID()
	svc := NewService(newFakeUserRepo(), &fakeRoleService{name: "Dentist", id: dentistID})

	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Names:    "Carlos",
		Surnames: "Mora",
		Email:    "cmora@clinic.ec",
		RoleName: strPtr("Dentist"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeUserRepo(), &fakeRoleService{})

	_, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Names:    "Lucia",
		Surnames: "Paz",
		Email:    "lpaz@clinic.ec",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateUserRequest{
		Names:    "Otra",
		Surnames: "Persona",
		Email:    "lpaz@clinic.ec",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestUpdateRoleChangeRevalidatesSpecialty(t *testing.T) {
	dentistID := primitive.NewObjectID()
	repo := newFakeUserRepo()
	svc := NewService(repo, &fakeRoleService{name: "Dentist", id: dentistID})

	user, err := svc.Create(context.Background(), &model.CreateUserRequest{
		Names:    "Lucia",
		Surnames: "Paz",
		Email:    "lpaz@clinic.ec",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), user.ID, &model.UpdateUserRequest{
		RoleName: strPtr("Dentist"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	updated, err := svc.Update(context.Background(), user.ID, &model.UpdateUserRequest{
		RoleName:  strPtr("Dentist"),
		Specialty: &[]string{"ortodoncia"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dentist", updated.RoleName)
	assert.Equal(t, dentistID, updated.RoleID)
}
