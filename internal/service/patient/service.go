package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type PatientService interface {
	Upsert(ctx context.Context, req *model.UpsertPatientRequest) (*model.Patient, error)
	Get(ctx context.Context, id string) (*model.Patient, error)
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error)
	Update(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo        repository.PatientRepository
	apptRepo    repository.AppointmentRepository
	historyRepo repository.ClinicalHistoryRepository
}

func NewService(repo repository.PatientRepository, apptRepo repository.AppointmentRepository, historyRepo repository.ClinicalHistoryRepository) *Service {
	return &Service{repo: repo, apptRepo: apptRepo, historyRepo: historyRepo}
}

var titleCaser = cases.Title(language.Spanish)

// normalizeName title-cases a person name: "ana maria" -> "Ana Maria".
func normalizeName(s string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
}

// normalizeBloodType strips spaces and uppercases: "o positivo" ->
// "OPOSITIVO".
func normalizeBloodType(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// Upsert creates or replaces the patient's fields, keyed by the natural
// identifier. The operation is idempotent.
func (s *Service) Upsert(ctx context.Context, req *model.UpsertPatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		ID:        strings.TrimSpace(req.ID),
		Names:     normalizeName(req.Names),
		Surnames:  normalizeName(req.Surnames),
		Age:       req.Age,
		Gender:    strings.TrimSpace(req.Gender),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Email:     strings.TrimSpace(req.Email),
		BloodType: normalizeBloodType(req.BloodType),
	}
	if patient.ID == "" {
		return nil, apperrors.BadRequest("patient id is required", nil)
	}

	if err := s.repo.Upsert(ctx, patient); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to upsert patient: %w", err))
	}
	return s.Get(ctx, patient.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	filters.Normalize()
	patients, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list patients: %w", err))
	}
	return patients, total, nil
}

func (s *Service) Update(ctx context.Context, id string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Names != nil {
		patient.Names = normalizeName(*req.Names)
	}
	if req.Surnames != nil {
		patient.Surnames = normalizeName(*req.Surnames)
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Gender != nil {
		patient.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Phone != nil {
		patient.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		patient.Address = strings.TrimSpace(*req.Address)
	}
	if req.Email != nil {
		patient.Email = strings.TrimSpace(*req.Email)
	}
	if req.BloodType != nil {
		patient.BloodType = normalizeBloodType(*req.BloodType)
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update patient: %w", err))
	}
	return patient, nil
}

// Delete refuses unconditionally while clinical or scheduling records still
// reference the patient; those references anchor identity data, so there is
// no force override.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	appts, err := s.apptRepo.CountByPatient(ctx, id)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to count appointments: %w", err))
	}
	histories, err := s.historyRepo.CountByPatient(ctx, id)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to count clinical histories: %w", err))
	}
	if appts+histories > 0 {
		return apperrors.Conflict("patient is referenced", map[string]int{
			"appointments":       int(appts),
			"clinical_histories": int(histories),
		})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient", err)
		}
		return apperrors.Internal(fmt.Errorf("failed to delete patient: %w", err))
	}
	return nil
}
