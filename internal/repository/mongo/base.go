package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/odontosys/clinic-api/internal/repository"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *mongo.Database
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *mongo.Database) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// wrapFindErr maps the driver's no-documents sentinel onto the repository
// not-found error.
func wrapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// isDuplicateKey reports whether err is a unique-index violation.
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// setArrayElement overwrites the element at index within an array-valued
// field using a positional $set. Existing positions are untouched.
func (r *BaseRepository) setArrayElement(ctx context.Context, coll string, filter bson.M, field string, index int, value interface{}) error {
	update := bson.M{"$set": bson.M{fmt.Sprintf("%s.%d", field, index): value}}
	res, err := r.coll(coll).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// pushArrayElements appends values to the end of an array-valued field
// without renumbering existing positions.
func (r *BaseRepository) pushArrayElements(ctx context.Context, coll string, filter bson.M, field string, values interface{}) error {
	update := bson.M{"$push": bson.M{field: bson.M{"$each": values}}}
	res, err := r.coll(coll).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// blankArrayElement is phase one of delete-at-index: the element is
// overwritten with a null marker so positions of the remaining elements do
// not shift under concurrent appends. compactArray removes the markers.
func (r *BaseRepository) blankArrayElement(ctx context.Context, coll string, filter bson.M, field string, index int) error {
	update := bson.M{"$unset": bson.M{fmt.Sprintf("%s.%d", field, index): 1}}
	res, err := r.coll(coll).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// compactArray is phase two of delete-at-index: every null marker left by
// blankArrayElement is pulled from the sequence.
func (r *BaseRepository) compactArray(ctx context.Context, coll string, filter bson.M, field string) error {
	update := bson.M{"$pull": bson.M{field: nil}}
	res, err := r.coll(coll).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
