package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontosys/clinic-api/internal/model"
	"github.com/odontosys/clinic-api/internal/repository"
)

type PatientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *mongo.Database) *PatientRepository {
	return &PatientRepository{BaseRepository: NewBaseRepository(db)}
}

// Upsert inserts or replaces the patient's fields, keyed by the natural
// identifier. Creation and update are the same idempotent operation.
func (r *PatientRepository) Upsert(ctx context.Context, patient *model.Patient) error {
	patient.UpdatedAt = nowUTC()
	update := bson.M{
		"$set": bson.M{
			"nombres":     patient.Names,
			"apellidos":   patient.Surnames,
			"edad":        patient.Age,
			"genero":      patient.Gender,
			"telefono":    patient.Phone,
			"direccion":   patient.Address,
			"email":       patient.Email,
			"tipo_sangre": patient.BloodType,
			"updated_at":  patient.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": patient.UpdatedAt},
	}
	_, err := r.coll(collPatients).UpdateByID(ctx, patient.ID, update, options.Update().SetUpsert(true))
	return err
}

func (r *PatientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	var patient model.Patient
	err := r.coll(collPatients).FindOne(ctx, bson.M{"_id": id}).Decode(&patient)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &patient, nil
}

func (r *PatientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	filter := bson.M{}
	if filters.Query != "" {
		regex := primitive.Regex{Pattern: filters.Query, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"_id": regex},
			bson.M{"nombres": regex},
			bson.M{"apellidos": regex},
		}
	}

	total, err := r.coll(collPatients).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "apellidos", Value: 1}, {Key: "nombres", Value: 1}}).
		SetSkip(int64(filters.Skip())).
		SetLimit(int64(filters.Limit))
	cursor, err := r.coll(collPatients).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var patients []*model.Patient
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	patient.UpdatedAt = nowUTC()
	res, err := r.coll(collPatients).ReplaceOne(ctx, bson.M{"_id": patient.ID}, patient)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll(collPatients).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
