package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
)

type ClinicalHistoryRepository struct {
	BaseRepository
}

func NewClinicalHistoryRepository(db *mongo.Database) *ClinicalHistoryRepository {
	return &ClinicalHistoryRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ClinicalHistoryRepository) Create(ctx context.Context, history *model.ClinicalHistory) error {
	history.CreatedAt = nowUTC()
	history.UpdatedAt = history.CreatedAt
	res, err := r.coll(collHistories).InsertOne(ctx, history)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("history already exists for patient: %w", err)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		history.ID = oid
	}
	return nil
}

func (r *ClinicalHistoryRepository) GetByPatient(ctx context.Context, patientID string) (*model.ClinicalHistory, error) {
	var history model.ClinicalHistory
	err := r.coll(collHistories).FindOne(ctx, bson.M{"patient_id": patientID}).Decode(&history)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &history, nil
}

func (r *ClinicalHistoryRepository) List(ctx context.Context, p *model.Pagination) ([]*model.ClinicalHistory, int64, error) {
	total, err := r.coll(collHistories).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "patient_id", Value: 1}}).
		SetSkip(int64(p.Skip())).
		SetLimit(int64(p.Limit))
	cursor, err := r.coll(collHistories).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	var histories []*model.ClinicalHistory
	if err := cursor.All(ctx, &histories); err != nil {
		return nil, 0, err
	}
	return histories, total, nil
}

func (r *ClinicalHistoryRepository) Update(ctx context.Context, history *model.ClinicalHistory) error {
	history.UpdatedAt = nowUTC()
	res, err := r.coll(collHistories).ReplaceOne(ctx, bson.M{"patient_id": history.PatientID}, history)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ClinicalHistoryRepository) Delete(ctx context.Context, patientID string) error {
	res, err := r.coll(collHistories).DeleteOne(ctx, bson.M{"patient_id": patientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ClinicalHistoryRepository) CountByPatient(ctx context.Context, patientID string) (int64, error) {
	return r.coll(collHistories).CountDocuments(ctx, bson.M{"patient_id": patientID})
}

func (r *ClinicalHistoryRepository) SetProcedure(ctx context.Context, patientID string, index int, entry model.ProcedureEntry) error {
	return r.setArrayElement(ctx, collHistories, bson.M{"patient_id": patientID}, "procedures", index, entry)
}

func (r *ClinicalHistoryRepository) PushProcedures(ctx context.Context, patientID string, entries []model.ProcedureEntry) error {
	return r.pushArrayElements(ctx, collHistories, bson.M{"patient_id": patientID}, "procedures", entries)
}

func (r *ClinicalHistoryRepository) BlankProcedure(ctx context.Context, patientID string, index int) error {
	return r.blankArrayElement(ctx, collHistories, bson.M{"patient_id": patientID}, "procedures", index)
}

func (r *ClinicalHistoryRepository) CompactProcedures(ctx context.Context, patientID string) error {
	return r.compactArray(ctx, collHistories, bson.M{"patient_id": patientID}, "procedures")
}
