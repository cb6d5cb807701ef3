package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontosys/clinic-api/internal/model"
)

// ErrNotFound is returned by repositories when a lookup matches nothing.
// Services translate it into the API error taxonomy.
type notFoundError struct{}

func (notFoundError) Error() string { return "document not found" }

var ErrNotFound error = notFoundError{}

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]*model.Role, error)
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, roles []*model.Role) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// CountByRole counts users referencing a catalog role either by its
	// generated identifier or by its denormalized name.
	CountByRole(ctx context.Context, roleID primitive.ObjectID, roleName string) (int64, error)
}

type PatientRepository interface {
	Upsert(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id string) (*model.Patient, error)
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id string) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, appt *model.Appointment) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Nested-array mutation on line_items.
	SetLineItem(ctx context.Context, id primitive.ObjectID, index int, item model.LineItem, total float64) error
	PushLineItems(ctx context.Context, id primitive.ObjectID, items []model.LineItem, total float64) error
	BlankLineItem(ctx context.Context, id primitive.ObjectID, index int) error
	CompactLineItems(ctx context.Context, id primitive.ObjectID) error
	SetTotal(ctx context.Context, id primitive.ObjectID, total float64) error

	// Reference counts for delete gates.
	CountByPatient(ctx context.Context, patientID string) (int64, error)
	CountByLineItemName(ctx context.Context, name string) (int64, error)
}

type ClinicalHistoryRepository interface {
	Create(ctx context.Context, history *model.ClinicalHistory) error
	GetByPatient(ctx context.Context, patientID string) (*model.ClinicalHistory, error)
	List(ctx context.Context, p *model.Pagination) ([]*model.ClinicalHistory, int64, error)
	Update(ctx context.Context, history *model.ClinicalHistory) error
	Delete(ctx context.Context, patientID string) error
	CountByPatient(ctx context.Context, patientID string) (int64, error)

	// Nested-array mutation on procedures.
	SetProcedure(ctx context.Context, patientID string, index int, entry model.ProcedureEntry) error
	PushProcedures(ctx context.Context, patientID string, entries []model.ProcedureEntry) error
	BlankProcedure(ctx context.Context, patientID string, index int) error
	CompactProcedures(ctx context.Context, patientID string) error
}

type ProcedureTypeRepository interface {
	Create(ctx context.Context, pt *model.ProcedureType) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.ProcedureType, error)
	GetByName(ctx context.Context, name string) (*model.ProcedureType, error)
	List(ctx context.Context, filters *model.ProcedureTypeFilters) ([]*model.ProcedureType, int64, error)
	Update(ctx context.Context, pt *model.ProcedureType) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type LabOrderRepository interface {
	Create(ctx context.Context, order *model.LabOrder) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.LabOrder, error)
	List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, int64, error)
	Update(ctx context.Context, order *model.LabOrder) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Nested-array mutation on products.
	SetProduct(ctx context.Context, id primitive.ObjectID, index int, product model.Product) error
	PushProducts(ctx context.Context, id primitive.ObjectID, products []model.Product) error
	SetProducts(ctx context.Context, id primitive.ObjectID, products []model.Product) error
	BlankProduct(ctx context.Context, id primitive.ObjectID, index int) error
	CompactProducts(ctx context.Context, id primitive.ObjectID) error
}
