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

type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = nowUTC()
	user.UpdatedAt = user.CreatedAt
	res, err := r.coll(collUsers).InsertOne(ctx, user)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("email already exists: %w", err)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := r.coll(collUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.coll(collUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error) {
	filter := bson.M{}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.Role != "" {
		filter["role_name"] = filters.Role
	}
	if filters.Search != "" {
		regex := primitive.Regex{Pattern: filters.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"names": regex},
			bson.M{"surnames": regex},
			bson.M{"email": regex},
		}
	}

	total, err := r.coll(collUsers).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "surnames", Value: 1}, {Key: "names", Value: 1}}).
		SetSkip(int64(filters.Skip())).
		SetLimit(int64(filters.Limit))
	cursor, err := r.coll(collUsers).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = nowUTC()
	res, err := r.coll(collUsers).ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("email already exists: %w", err)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll(collUsers).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context, roleID primitive.ObjectID, roleName string) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"role_id": roleID},
		bson.M{"role_name": roleName},
	}}
	return r.coll(collUsers).CountDocuments(ctx, filter)
}
