package model

import (
	"time"
)

// ProcedureEntry is one performed procedure within a patient's history.
type ProcedureEntry struct {
	Treatment    string    `json:"treatment" bson:"treatment" validate:"required"`
	Date         time.Time `json:"date" bson:"date" validate:"required"`
	Practitioner string    `json:"practitioner,omitempty" bson:"practitioner,omitempty"`
	Outcome      string    `json:"outcome,omitempty" bson:"outcome,omitempty"`
}

// ClinicalHistory holds at most one document per patient.
type ClinicalHistory struct {
	Base           `bson:",inline"`
	PatientID      string           `json:"patient_id" bson:"patient_id"`
	MedicalHistory []string         `json:"medical_history" bson:"medical_history"`
	Allergies      []string         `json:"allergies" bson:"allergies"`
	Prescriptions  []string         `json:"prescriptions" bson:"prescriptions"`
	Procedures     []ProcedureEntry `json:"procedures" bson:"procedures"`
}

type CreateHistoryRequest struct {
	PatientID      string           `json:"patient_id" binding:"required"`
	MedicalHistory []string         `json:"medical_history"`
	Allergies      []string         `json:"allergies"`
	Prescriptions  []string         `json:"prescriptions"`
	Procedures     []ProcedureEntry `json:"procedures"`
}

type UpdateHistoryRequest struct {
	MedicalHistory *[]string         `json:"medical_history"`
	Allergies      *[]string         `json:"allergies"`
	Prescriptions  *[]string         `json:"prescriptions"`
	Procedures     *[]ProcedureEntry `json:"procedures"`
}

// ProcedurePatch holds the partial fields of a merge-patch on one
// performed-procedure entry.
type ProcedurePatch struct {
	Treatment    *string    `json:"treatment"`
	Date         *time.Time `json:"date"`
	Practitioner *string    `json:"practitioner"`
	Outcome      *string    `json:"outcome"`
}
