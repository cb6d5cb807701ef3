package model

// ProcedureType is a catalog entry for billable procedures.
type ProcedureType struct {
	Base   `bson:",inline"`
	Name   string  `json:"name" bson:"name"`
	Cost   float64 `json:"cost" bson:"cost"`
	Active bool    `json:"active" bson:"active"`
}

type CreateProcedureTypeRequest struct {
	Name   string  `json:"name" binding:"required"`
	Cost   float64 `json:"cost" binding:"gte=0"`
	Active *bool   `json:"active"`
}

type UpdateProcedureTypeRequest struct {
	Name   *string  `json:"name"`
	Cost   *float64 `json:"cost" binding:"omitempty,gte=0"`
	Active *bool    `json:"active"`
}

// ProcedureTypeFilters represents procedure type search parameters
type ProcedureTypeFilters struct {
	Active *bool `form:"active"`
	Pagination
}
