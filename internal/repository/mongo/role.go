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

type RoleRepository struct {
	BaseRepository
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *RoleRepository) Create(ctx context.Context, role *model.Role) error {
	role.CreatedAt = nowUTC()
	role.UpdatedAt = role.CreatedAt
	res, err := r.coll(collRoles).InsertOne(ctx, role)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("role name already exists: %w", err)
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		role.ID = oid
	}
	return nil
}

func (r *RoleRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Role, error) {
	var role model.Role
	err := r.coll(collRoles).FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.coll(collRoles).FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*model.Role, error) {
	cursor, err := r.coll(collRoles).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var roles []*model.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *model.Role) error {
	role.UpdatedAt = nowUTC()
	update := bson.M{"$set": bson.M{
		"description": role.Description,
		"permissions": role.Permissions,
		"updated_at":  role.UpdatedAt,
	}}
	res, err := r.coll(collRoles).UpdateOne(ctx, bson.M{"_id": role.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll(collRoles).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) Count(ctx context.Context) (int64, error) {
	return r.coll(collRoles).CountDocuments(ctx, bson.M{})
}

func (r *RoleRepository) InsertMany(ctx context.Context, roles []*model.Role) error {
	docs := make([]interface{}, 0, len(roles))
	now := nowUTC()
	for _, role := range roles {
		role.CreatedAt = now
		role.UpdatedAt = now
		docs = append(docs, role)
	}
	_, err := r.coll(collRoles).InsertMany(ctx, docs)
	return err
}
