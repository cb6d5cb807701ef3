package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type HistoryService interface {
	Create(ctx context.Context, req *model.CreateHistoryRequest) (*model.ClinicalHistory, error)
	GetByPatient(ctx context.Context, patientID string) (*model.ClinicalHistory, error)
	List(ctx context.Context, p *model.Pagination) ([]*model.ClinicalHistory, int64, error)
	Update(ctx context.Context, patientID string, req *model.UpdateHistoryRequest) (*model.ClinicalHistory, error)
	Delete(ctx context.Context, patientID string) error

	PatchProcedure(ctx context.Context, patientID string, index int, patch *model.ProcedurePatch) (*model.ClinicalHistory, error)
	AppendProcedures(ctx context.Context, patientID string, entries []model.ProcedureEntry) (*model.ClinicalHistory, error)
	DeleteProcedure(ctx context.Context, patientID string, index int) (*model.ClinicalHistory, error)
}

type Service struct {
	repo        repository.ClinicalHistoryRepository
	patientRepo repository.PatientRepository
	validate    *validator.Validate
}

func NewService(repo repository.ClinicalHistoryRepository, patientRepo repository.PatientRepository) *Service {
	return &Service{repo: repo, patientRepo: patientRepo, validate: validator.New()}
}

// Create opens the single history document a patient may have. A second
// create for the same patient conflicts.
func (s *Service) Create(ctx context.Context, req *model.CreateHistoryRequest) (*model.ClinicalHistory, error) {
	if _, err := s.patientRepo.Get(ctx, req.PatientID); errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("patient", err)
	} else if err != nil {
		return nil, apperrors.Internal(err)
	}

	if _, err := s.repo.GetByPatient(ctx, req.PatientID); err == nil {
		return nil, apperrors.Conflict("clinical history already exists for patient", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	history := &model.ClinicalHistory{
		PatientID:      req.PatientID,
		MedicalHistory: orEmpty(req.MedicalHistory),
		Allergies:      orEmpty(req.Allergies),
		Prescriptions:  orEmpty(req.Prescriptions),
		Procedures:     req.Procedures,
	}
	if history.Procedures == nil {
		history.Procedures = []model.ProcedureEntry{}
	}

	if err := s.repo.Create(ctx, history); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create clinical history: %w", err))
	}
	return history, nil
}

func (s *Service) GetByPatient(ctx context.Context, patientID string) (*model.ClinicalHistory, error) {
	history, err := s.repo.GetByPatient(ctx, patientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("clinical history", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return history, nil
}

func (s *Service) List(ctx context.Context, p *model.Pagination) ([]*model.ClinicalHistory, int64, error) {
	p.Normalize()
	histories, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, 0, apperrors.Internal(fmt.Errorf("failed to list clinical histories: %w", err))
	}
	return histories, total, nil
}

func (s *Service) Update(ctx context.Context, patientID string, req *model.UpdateHistoryRequest) (*model.ClinicalHistory, error) {
	history, err := s.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if req.MedicalHistory != nil {
		history.MedicalHistory = *req.MedicalHistory
	}
	if req.Allergies != nil {
		history.Allergies = *req.Allergies
	}
	if req.Prescriptions != nil {
		history.Prescriptions = *req.Prescriptions
	}
	if req.Procedures != nil {
		history.Procedures = *req.Procedures
	}

	if err := s.repo.Update(ctx, history); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinical history", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update clinical history: %w", err))
	}
	return history, nil
}

func (s *Service) Delete(ctx context.Context, patientID string) error {
	if err := s.repo.Delete(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("clinical history", err)
		}
		return apperrors.Internal(fmt.Errorf("failed to delete clinical history: %w", err))
	}
	return nil
}

// PatchProcedure shallow-merges the supplied fields over the entry at index
// and re-validates the merged entry before writing it back positionally.
func (s *Service) PatchProcedure(ctx context.Context, patientID string, index int, patch *model.ProcedurePatch) (*model.ClinicalHistory, error) {
	history, err := s.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(history.Procedures) {
		return nil, apperrors.NotFound("index out of range: procedure", nil)
	}

	merged := history.Procedures[index]
	if patch.Treatment != nil {
		merged.Treatment = *patch.Treatment
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.Practitioner != nil {
		merged.Practitioner = *patch.Practitioner
	}
	if patch.Outcome != nil {
		merged.Outcome = *patch.Outcome
	}
	if err := s.validate.Struct(merged); err != nil {
		return nil, apperrors.BadRequest("invalid procedure entry", err)
	}

	if err := s.repo.SetProcedure(ctx, patientID, index, merged); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinical history", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to patch procedure: %w", err))
	}
	history.Procedures[index] = merged
	return history, nil
}

func (s *Service) AppendProcedures(ctx context.Context, patientID string, entries []model.ProcedureEntry) (*model.ClinicalHistory, error) {
	history, err := s.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if err := s.validate.Struct(entry); err != nil {
			return nil, apperrors.BadRequest("invalid procedure entry", err)
		}
	}

	if err := s.repo.PushProcedures(ctx, patientID, entries); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinical history", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to append procedures: %w", err))
	}
	history.Procedures = append(history.Procedures, entries...)
	return history, nil
}

// DeleteProcedure removes the entry at index with the two-phase
// blank-then-compact protocol; the resulting sequence never retains a
// placeholder. Deleting at or beyond the current length is a
// reported-success no-op.
func (s *Service) DeleteProcedure(ctx context.Context, patientID string, index int) (*model.ClinicalHistory, error) {
	history, err := s.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, apperrors.BadRequest("index must be non-negative", nil)
	}
	if index >= len(history.Procedures) {
		return history, nil
	}

	if err := s.repo.BlankProcedure(ctx, patientID, index); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to blank procedure: %w", err))
	}
	if err := s.repo.CompactProcedures(ctx, patientID); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to compact procedures: %w", err))
	}
	history.Procedures = append(history.Procedures[:index], history.Procedures[index+1:]...)
	return history, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
