package laborder

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

type fakeLabOrderRepo struct {
	orders map[primitive.ObjectID]*model.LabOrder

	blanked   []int
	compacted int
}

func newFakeLabOrderRepo() *fakeLabOrderRepo {
	return &fakeLabOrderRepo{orders: make(map[primitive.ObjectID]*model.LabOrder)}
}

func (r *fakeLabOrderRepo) Create(_ context.Context, order *model.LabOrder) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	stored := *order
	stored.Products = append([]model.Product(nil), order.Products...)
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeLabOrderRepo) Get(_ context.Context, id primitive.ObjectID) (*model.LabOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *order
	out.Products = append([]model.Product(nil), order.Products...)
	return &out, nil
}

func (r *fakeLabOrderRepo) List(_ context.Context, _ *model.LabOrderFilters) ([]*model.LabOrder, int64, error) {
	out := make([]*model.LabOrder, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, order)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLabOrderRepo) Update(_ context.Context, order *model.LabOrder) error {
	if _, ok := r.orders[order.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *order
	stored.Products = append([]model.Product(nil), order.Products...)
	r.orders[order.ID] = &stored
	return nil
}

func (r *fakeLabOrderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := r.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeLabOrderRepo) SetProduct(_ context.Context, id primitive.ObjectID, index int, product model.Product) error {
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Products[index] = product
	return nil
}

func (r *fakeLabOrderRepo) PushProducts(_ context.Context, id primitive.ObjectID, products []model.Product) error {
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Products = append(order.Products, products...)
	return nil
}

func (r *fakeLabOrderRepo) SetProducts(_ context.Context, id primitive.ObjectID, products []model.Product) error {
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Products = products
	return nil
}

func (r *fakeLabOrderRepo) BlankProduct(_ context.Context, id primitive.ObjectID, index int) error {
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Products[index] = model.Product{}
	r.blanked = append(r.blanked, index)
	return nil
}

func (r *fakeLabOrderRepo) CompactProducts(_ context.Context, id primitive.ObjectID) error {
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	kept := order.Products[:0]
	for i, product := range order.Products {
		if len(r.blanked) > 0 && i == r.blanked[len(r.blanked)-1] {
			continue
		}
		kept = append(kept, product)
	}
	order.Products = kept
	r.compacted++
	return nil
}

type fakeApptLookup struct {
	repository.AppointmentRepository
	missing bool
}

func (r *fakeApptLookup) Get(_ context.Context, id primitive.ObjectID) (*model.Appointment, error) {
	if r.missing {
		return nil, repository.ErrNotFound
	}
	appt := &model.Appointment{}
	appt.ID = id
	return appt, nil
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func createOrder(t *testing.T, svc *Service, products []model.Product) *model.LabOrder {
	t.Helper()
	order, err := svc.Create(context.Background(), &model.CreateLabOrderRequest{
		AppointmentID: primitive.NewObjectID().Hex(),
		UserID:        primitive.NewObjectID().Hex(),
		Products:      products,
	})
	require.NoError(t, err)
	return order
}

func TestCreateDefaultsStatusAndNotes(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{})

	order := createOrder(t, svc, nil)
	assert.Equal(t, model.LabOrderStatusPending, order.Status)
	assert.Equal(t, model.NotesKindText, order.Notes.Kind)
	assert.NotNil(t, order.Products)
}

func TestCreateRequiresExistingAppointment(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{missing: true})

	_, err := svc.Create(context.Background(), &model.CreateLabOrderRequest{
		AppointmentID: primitive.NewObjectID().Hex(),
		UserID:        primitive.NewObjectID().Hex(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdateReplaceProducts(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	updated, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op:       model.LabOrderOpReplace,
		Products: []model.Product{{ProductType: "puente", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, "puente", updated.Products[0].ProductType)
}

func TestUpdateReplaceWithNilClearsProducts(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	updated, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op: model.LabOrderOpReplace,
	})
	require.NoError(t, err)
	assert.NotNil(t, updated.Products)
	assert.Empty(t, updated.Products)
}

func TestUpdateAppendProducts(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	updated, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op:       model.LabOrderOpAppend,
		Products: []model.Product{{ProductType: "retenedor", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Products, 2)
	assert.Equal(t, "retenedor", updated.Products[1].ProductType)
}

func TestUpdatePatchProductMerges(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{
		{ProductType: "corona", Specifications: "zirconio", Quantity: 1},
	})

	updated, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op:    model.LabOrderOpPatchAtIndex,
		Index: intPtr(0),
		Patch: &model.ProductPatch{Quantity: intPtr(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, "corona", updated.Products[0].ProductType)
	assert.Equal(t, "zirconio", updated.Products[0].Specifications)
	assert.Equal(t, 3, updated.Products[0].Quantity)
}

func TestUpdatePatchOutOfRangeLeavesOrderUntouched(t *testing.T) {
	repo := newFakeLabOrderRepo()
	svc := NewService(repo, &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	_, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op:    model.LabOrderOpPatchAtIndex,
		Index: intPtr(5),
		Patch: &model.ProductPatch{Quantity: intPtr(3)},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	stored, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Products, 1)
	assert.Equal(t, 1, stored.Products[0].Quantity)
}

func TestUpdatePatchRequiresIndexAndPatch(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	_, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op: model.LabOrderOpPatchAtIndex,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestUpdateDeleteProductCompacts(t *testing.T) {
	repo := newFakeLabOrderRepo()
	svc := NewService(repo, &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{
		{ProductType: "corona", Quantity: 1},
		{ProductType: "puente", Quantity: 1},
		{ProductType: "retenedor", Quantity: 1},
	})

	updated, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op:    model.LabOrderOpDeleteAtIndex,
		Index: intPtr(1),
	})
	require.NoError(t, err)
	require.Len(t, updated.Products, 2)
	assert.Equal(t, "corona", updated.Products[0].ProductType)
	assert.Equal(t, "retenedor", updated.Products[1].ProductType)
	assert.Equal(t, []int{1}, repo.blanked)
	assert.Equal(t, 1, repo.compacted)
}

func TestUpdateDeleteBeyondLengthIsNoOp(t *testing.T) {
	repo := newFakeLabOrderRepo()
	svc := NewService(repo, &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	updated, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Op:    model.LabOrderOpDeleteAtIndex,
		Index: intPtr(9),
	})
	require.NoError(t, err)
	assert.Len(t, updated.Products, 1)
	assert.Empty(t, repo.blanked)
}

func TestUpdateScalarWithOutOfRangePatchWritesNothing(t *testing.T) {
	repo := newFakeLabOrderRepo()
	svc := NewService(repo, &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	_, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Status: strPtr("Delivered"),
		Op:     model.LabOrderOpPatchAtIndex,
		Index:  intPtr(5),
		Patch:  &model.ProductPatch{Quantity: intPtr(3)},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	stored, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LabOrderStatusPending, stored.Status)
	require.Len(t, stored.Products, 1)
	assert.Equal(t, 1, stored.Products[0].Quantity)
}

func TestUpdateScalarWithMalformedOpWritesNothing(t *testing.T) {
	repo := newFakeLabOrderRepo()
	svc := NewService(repo, &fakeApptLookup{})
	order := createOrder(t, svc, []model.Product{{ProductType: "corona", Quantity: 1}})

	_, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Status: strPtr("Delivered"),
		Op:     model.LabOrderOpPatchAtIndex,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	stored, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LabOrderStatusPending, stored.Status)
}

func TestUpdateScalarsWithoutArrayOp(t *testing.T) {
	svc := NewService(newFakeLabOrderRepo(), &fakeApptLookup{})
	order := createOrder(t, svc, nil)

	updated, err := svc.Update(context.Background(), order.ID, &model.UpdateLabOrderRequest{
		Status: strPtr("InProduction"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.LabOrderStatusInProduction, updated.Status)
}
