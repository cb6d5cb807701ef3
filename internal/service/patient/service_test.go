package patient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
	apperrors "github.com/odontosys/clinic-api/pkg/errors"
)

type fakePatientRepo struct {
	patients map[string]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[string]*model.Patient)}
}

func (r *fakePatientRepo) Upsert(_ context.Context, patient *model.Patient) error {
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) Get(_ context.Context, id string) (*model.Patient, error) {
	patient, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *patient
	return &out, nil
}

func (r *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, int64, error) {
	out := make([]*model.Patient, 0, len(r.patients))
	for _, patient := range r.patients {
		out = append(out, patient)
	}
	return out, int64(len(out)), nil
}

func (r *fakePatientRepo) Update(_ context.Context, patient *model.Patient) error {
	if _, ok := r.patients[patient.ID]; !ok {
		return repository.ErrNotFound
	}
	r.patients[patient.ID] = patient
	return nil
}

func (r *fakePatientRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.patients, id)
	return nil
}

type fakeApptCounter struct {
	repository.AppointmentRepository
	count int64
}

func (r *fakeApptCounter) CountByPatient(_ context.Context, _ string) (int64, error) {
	return r.count, nil
}

type fakeHistoryCounter struct {
	repository.ClinicalHistoryRepository
	count int64
}

func (r *fakeHistoryCounter) CountByPatient(_ context.Context, _ string) (int64, error) {
	return r.count, nil
}

func newService(appts, histories int64) (*Service, *fakePatientRepo) {
	repo := newFakePatientRepo()
	return NewService(repo, &fakeApptCounter{count: appts}, &fakeHistoryCounter{count: histories}), repo
}

func TestUpsertNormalizesNamesAndBloodType(t *testing.T) {
	svc, _ := newService(0, 0)

	patient, err := svc.Upsert(context.Background(), &model.UpsertPatientRequest{
		ID:        "1712345678",
		Names:     "  ana maria ",
		Surnames:  "PEREZ lopez",
		Age:       34,
		Gender:    "F",
		BloodType: " o positivo ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", patient.Names)
	assert.Equal(t, "Perez Lopez", patient.Surnames)
	assert.Equal(t, "OPOSITIVO", patient.BloodType)
}

func TestUpsertIsIdempotent(t *testing.T) {
	svc, repo := newService(0, 0)

	req := &model.UpsertPatientRequest{
		ID:        "1712345678",
		Names:     "ana",
		Surnames:  "perez",
		Age:       34,
		Gender:    "F",
		BloodType: "A+",
	}
	_, err := svc.Upsert(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, repo.patients, 1)
}

func TestUpsertRejectsBlankID(t *testing.T) {
	svc, _ := newService(0, 0)

	_, err := svc.Upsert(context.Background(), &model.UpsertPatientRequest{
		ID:        "   ",
		Names:     "ana",
		Surnames:  "perez",
		Gender:    "F",
		BloodType: "A+",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestUpdateNormalizesChangedFieldsOnly(t *testing.T) {
	svc, _ := newService(0, 0)
	_, err := svc.Upsert(context.Background(), &model.UpsertPatientRequest{
		ID:        "1712345678",
		Names:     "ana",
		Surnames:  "perez",
		Gender:    "F",
		BloodType: "A+",
	})
	require.NoError(t, err)

	blood := "o negativo"
	updated, err := svc.Update(context.Background(), "1712345678", &model.UpdatePatientRequest{
		BloodType: &blood,
	})
	require.NoError(t, err)
	assert.Equal(t, "ONEGATIVO", updated.BloodType)
	assert.Equal(t, "Ana", updated.Names)
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	svc, repo := newService(2, 1)
	_, err := svc.Upsert(context.Background(), &model.UpsertPatientRequest{
		ID:        "1712345678",
		Names:     "ana",
		Surnames:  "perez",
		Gender:    "F",
		BloodType: "A+",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "1712345678")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, map[string]int{"appointments": 2, "clinical_histories": 1}, appErr.Details)
	assert.Contains(t, repo.patients, "1712345678")
}

func TestDeleteSucceedsWhenUnreferenced(t *testing.T) {
	svc, repo := newService(0, 0)
	_, err := svc.Upsert(context.Background(), &model.UpsertPatientRequest{
		ID:        "1712345678",
		Names:     "ana",
		Surnames:  "perez",
		Gender:    "F",
		BloodType: "A+",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "1712345678"))
	assert.NotContains(t, repo.patients, "1712345678")
}

func TestDeleteUnknownPatientIsNotFound(t *testing.T) {
	svc, _ := newService(0, 0)

	err := svc.Delete(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
