package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
)

// LineItem is one billed procedure within an appointment.
type LineItem struct {
	Name     string  `json:"name" bson:"name" validate:"required"`
	UnitCost float64 `json:"unit_cost" bson:"unit_cost" validate:"gte=0"`
	Quantity int     `json:"quantity" bson:"quantity" validate:"gte=1"`
}

type Appointment struct {
	Base      `bson:",inline"`
	Date      time.Time          `json:"date" bson:"date"`
	PatientID string             `json:"patient_id" bson:"patient_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Status    AppointmentStatus  `json:"status" bson:"status"`
	Reason    string             `json:"reason,omitempty" bson:"reason,omitempty"`
	LineItems []LineItem         `json:"line_items" bson:"line_items"`
	Total     float64            `json:"total" bson:"total"`
}

type CreateAppointmentRequest struct {
	Date      time.Time  `json:"date" binding:"required"`
	PatientID string     `json:"patient_id" binding:"required"`
	UserID    string     `json:"user_id" binding:"required"`
	Status    string     `json:"status" binding:"omitempty,oneof=Pending Confirmed Cancelled Completed"`
	Reason    string     `json:"reason"`
	LineItems []LineItem `json:"line_items"`
	Total     *float64   `json:"total" binding:"omitempty,gte=0"`
}

type UpdateAppointmentRequest struct {
	Date      *time.Time  `json:"date"`
	Status    *string     `json:"status" binding:"omitempty,oneof=Pending Confirmed Cancelled Completed"`
	Reason    *string     `json:"reason"`
	LineItems *[]LineItem `json:"line_items"`
	Total     *float64    `json:"total" binding:"omitempty,gte=0"`
}

// LineItemPatch holds the partial fields of a merge-patch at index. Only
// fields present override the stored element.
type LineItemPatch struct {
	Name     *string  `json:"name"`
	UnitCost *float64 `json:"unit_cost" binding:"omitempty,gte=0"`
	Quantity *int     `json:"quantity" binding:"omitempty,gte=1"`
}

// AppointmentFilters represents appointment search parameters
type AppointmentFilters struct {
	PatientID string     `form:"patient_id"`
	UserID    string     `form:"user_id"`
	Status    string     `form:"status"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Pagination
}
