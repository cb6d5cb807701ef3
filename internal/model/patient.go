package model

import (
	"time"
)

// Patient is keyed by a natural identifier (national ID string), not a
// generated one. Field tags keep the wire names of the clinic's intake forms.
type Patient struct {
	ID        string    `json:"_id" bson:"_id"`
	Names     string    `json:"nombres" bson:"nombres"`
	Surnames  string    `json:"apellidos" bson:"apellidos"`
	Age       int       `json:"edad" bson:"edad"`
	Gender    string    `json:"genero" bson:"genero"`
	Phone     string    `json:"telefono,omitempty" bson:"telefono,omitempty"`
	Address   string    `json:"direccion,omitempty" bson:"direccion,omitempty"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	BloodType string    `json:"tipo_sangre" bson:"tipo_sangre"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// UpsertPatientRequest creates or replaces patient fields, keyed by the
// natural identifier.
type UpsertPatientRequest struct {
	ID        string `json:"_id" binding:"required"`
	Names     string `json:"nombres" binding:"required"`
	Surnames  string `json:"apellidos" binding:"required"`
	Age       int    `json:"edad" binding:"gte=0,lte=120"`
	Gender    string `json:"genero" binding:"required"`
	Phone     string `json:"telefono"`
	Address   string `json:"direccion"`
	Email     string `json:"email" binding:"omitempty,email"`
	BloodType string `json:"tipo_sangre" binding:"required"`
}

type UpdatePatientRequest struct {
	Names     *string `json:"nombres"`
	Surnames  *string `json:"apellidos"`
	Age       *int    `json:"edad" binding:"omitempty,gte=0,lte=120"`
	Gender    *string `json:"genero"`
	Phone     *string `json:"telefono"`
	Address   *string `json:"direccion"`
	Email     *string `json:"email" binding:"omitempty,email"`
	BloodType *string `json:"tipo_sangre"`
}

// PatientFilters represents patient search parameters
type PatientFilters struct {
	Query string `form:"q"`
	Pagination
}
