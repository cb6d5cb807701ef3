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

type ProcedureTypeRepository struct {
	BaseRepository
}

func NewProcedureTypeRepository(db *mongo.Database) *ProcedureTypeRepository {
	return &ProcedureTypeRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ProcedureTypeRepository) Create(ctx context.Context, pt *model.ProcedureType) error {
	pt.CreatedAt = nowUTC()
	pt.UpdatedAt = pt.CreatedAt
	res, err := r.coll(collProcedureTypes).InsertOne(ctx, pt)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("procedure type name already exists: %w", err)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		pt.ID = oid
	}
	return nil
}

func (r *ProcedureTypeRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.ProcedureType, error) {
	var pt model.ProcedureType
	err := r.coll(collProcedureTypes).FindOne(ctx, bson.M{"_id": id}).Decode(&pt)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &pt, nil
}

func (r *ProcedureTypeRepository) GetByName(ctx context.Context, name string) (*model.ProcedureType, error) {
	var pt model.ProcedureType
	err := r.coll(collProcedureTypes).FindOne(ctx, bson.M{"name": name}).Decode(&pt)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &pt, nil
}

func (r *ProcedureTypeRepository) List(ctx context.Context, filters *model.ProcedureTypeFilters) ([]*model.ProcedureType, int64, error) {
	filter := bson.M{}
	if filters.Active != nil {
		filter["active"] = *filters.Active
	}

	total, err := r.coll(collProcedureTypes).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(filters.Skip())).
		SetLimit(int64(filters.Limit))
	cursor, err := r.coll(collProcedureTypes).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var types []*model.ProcedureType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, 0, err
	}
	return types, total, nil
}

func (r *ProcedureTypeRepository) Update(ctx context.Context, pt *model.ProcedureType) error {
	pt.UpdatedAt = nowUTC()
	res, err := r.coll(collProcedureTypes).ReplaceOne(ctx, bson.M{"_id": pt.ID}, pt)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("procedure type name already exists: %w", err)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProcedureTypeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll(collProcedureTypes).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
