package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type fakeHistoryRepo struct {
	histories map[string]*model.ClinicalHistory

	blanked []int
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{histories: make(map[string]*model.ClinicalHistory)}
}

func (r *fakeHistoryRepo) Create(_ context.Context, history *model.ClinicalHistory) error {
	stored := *history
	stored.Procedures = append([]model.ProcedureEntry(nil), history.Procedures...)
	r.histories[history.PatientID] = &stored
	return nil
}

func (r *fakeHistoryRepo) GetByPatient(_ context.Context, patientID string) (*model.ClinicalHistory, error) {
	history, ok := r.histories[patientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *history
	out.Procedures = append([]model.ProcedureEntry(nil), history.Procedures...)
	return &out, nil
}

func (r *fakeHistoryRepo) List(_ context.Context, _ *model.Pagination) ([]*model.ClinicalHistory, int64, error) {
	out := make([]*model.ClinicalHistory, 0, len(r.histories))
	for _, history := range r.histories {
		out = append(out, history)
	}
	return out, int64(len(out)), nil
}

func (r *fakeHistoryRepo) Update(_ context.Context, history *model.ClinicalHistory) error {
	if _, ok := r.histories[history.PatientID]; !ok {
		return repository.ErrNotFound
	}
	stored := *history
	stored.Procedures = append([]model.ProcedureEntry(nil), history.Procedures...)
	r.histories[history.PatientID] = &stored
	return nil
}

func (r *fakeHistoryRepo) Delete(_ context.Context, patientID string) error {
	if _, ok := r.histories[patientID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.histories, patientID)
	return nil
}

func (r *fakeHistoryRepo) CountByPatient(_ context.Context, patientID string) (int64, error) {
	if _, ok := r.histories[patientID]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *fakeHistoryRepo) SetProcedure(_ context.Context, patientID string, index int, entry model.ProcedureEntry) error {
	history, ok := r.histories[patientID]
	if !ok {
		return repository.ErrNotFound
	}
	history.Procedures[index] = entry
	return nil
}

func (r *fakeHistoryRepo) PushProcedures(_ context.Context, patientID string, entries []model.ProcedureEntry) error {
	history, ok := r.histories[patientID]
	if !ok {
		return repository.ErrNotFound
	}
	history.Procedures = append(history.Procedures, entries...)
	return nil
}

func (r *fakeHistoryRepo) BlankProcedure(_ context.Context, patientID string, index int) error {
	history, ok := r.histories[patientID]
	if !ok {
		return repository.ErrNotFound
	}
	history.Procedures[index] = model.ProcedureEntry{}
	r.blanked = append(r.blanked, index)
	return nil
}

func (r *fakeHistoryRepo) CompactProcedures(_ context.Context, patientID string) error {
	history, ok := r.histories[patientID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := history.Procedures[:0]
	for i, entry := range history.Procedures {
		if len(r.blanked) > 0 && i == r.blanked[len(r.blanked)-1] {
			continue
		}
		kept = append(kept, entry)
	}
	history.Procedures = kept
	return nil
}

type fakePatientLookup struct {
	repository.PatientRepository
	missing bool
}

func (r *fakePatientLookup) Get(_ context.Context, id string) (*model.Patient, error) {
	if r.missing {
		return nil, repository.ErrNotFound
	}
	return &model.Patient{ID: id}, nil
}

func entry(treatment string) model.ProcedureEntry {
	return model.ProcedureEntry{
		Treatment: treatment,
		Date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

func strPtr(s string) *string { return &s }

func TestCreateRequiresExistingPatient(t *testing.T) {
	svc := NewService(newFakeHistoryRepo(), &fakePatientLookup{missing: true})

	_, err := svc.Create(context.Background(), &model.CreateHistoryRequest{PatientID: "1712345678"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestCreateSecondHistoryConflicts(t *testing.T) {
	svc := NewService(newFakeHistoryRepo(), &fakePatientLookup{})

	_, err := svc.Create(context.Background(), &model.CreateHistoryRequest{PatientID: "1712345678"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateHistoryRequest{PatientID: "1712345678"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestCreateInitializesEmptySlices(t *testing.T) {
	svc := NewService(newFakeHistoryRepo(), &fakePatientLookup{})

	history, err := svc.Create(context.Background(), &model.CreateHistoryRequest{PatientID: "1712345678"})
	require.NoError(t, err)
	assert.NotNil(t, history.MedicalHistory)
	assert.NotNil(t, history.Allergies)
	assert.NotNil(t, history.Prescriptions)
	assert.NotNil(t, history.Procedures)
}

func TestPatchProcedureMerges(t *testing.T) {
	svc := NewService(newFakeHistoryRepo(), &fakePatientLookup{})
	_, err := svc.Create(context.Background(), &model.CreateHistoryRequest{
		PatientID:  "1712345678",
		Procedures: []model.ProcedureEntry{entry("limpieza"), entry("resina")},
	})
	require.NoError(t, err)

	patched, err := svc.PatchProcedure(context.Background(), "1712345678", 1, &model.ProcedurePatch{
		Outcome: strPtr("sin complicaciones"),
	})
	require.NoError(t, err)
	assert.Equal(t, "resina", patched.Procedures[1].Treatment)
	assert.Equal(t, "sin complicaciones", patched.Procedures[1].Outcome)
}

func TestPatchProcedureOutOfRange(t *testing.T) {
	svc := NewService(newFakeHistoryRepo(), &fakePatientLookup{})
	_, err := svc.Create(context.Background(), &model.CreateHistoryRequest{
		PatientID:  "1712345678",
		Procedures: []model.ProcedureEntry{entry("limpieza")},
	})
	require.NoError(t, err)

	_, err = svc.PatchProcedure(context.Background(), "1712345678", 3, &model.ProcedurePatch{
		Outcome: strPtr("x"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestDeleteProcedureCompacts(t *testing.T) {
	repo := newFakeHistoryRepo()
	svc := NewService(repo, &fakePatientLookup{})
	_, err := svc.Create(context.Background(), &model.CreateHistoryRequest{
		PatientID:  "1712345678",
		Procedures: []model.ProcedureEntry{entry("limpieza"), entry("resina"), entry("extraccion")},
	})
	require.NoError(t, err)

	result, err := svc.DeleteProcedure(context.Background(), "1712345678", 0)
	require.NoError(t, err)
	require.Len(t, result.Procedures, 2)
	assert.Equal(t, "resina", result.Procedures[0].Treatment)
	assert.Equal(t, []int{0}, repo.blanked)
}

func TestDeleteProcedureBeyondLengthIsNoOp(t *testing.T) {
	repo := newFakeHistoryRepo()
	svc := NewService(repo, &fakePatientLookup{})
	_, err := svc.Create(context.Background(), &model.CreateHistoryRequest{
		PatientID:  "1712345678",
		Procedures: []model.ProcedureEntry{entry("limpieza")},
	})
	require.NoError(t, err)

	result, err := svc.DeleteProcedure(context.Background(), "1712345678", 5)
	require.NoError(t, err)
	assert.Len(t, result.Procedures, 1)
	assert.Empty(t, repo.blanked)
}

func TestAppendProceduresValidatesEntries(t *testing.T) {
	svc := NewService(newFakeHistoryRepo(), &fakePatientLookup{})
	_, err := svc.Create(context.Background(), &model.CreateHistoryRequest{PatientID: "1712345678"})
	require.NoError(t, err)

	_, err = svc.AppendProcedures(context.Background(), "1712345678", []model.ProcedureEntry{
		{Treatment: ""},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))

	result, err := svc.AppendProcedures(context.Background(), "1712345678", []model.ProcedureEntry{
		entry("limpieza"),
	})
	require.NoError(t, err)
	assert.Len(t, result.Procedures, 1)
}
