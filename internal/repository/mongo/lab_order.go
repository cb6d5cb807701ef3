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

type LabOrderRepository struct {
	BaseRepository
}

func NewLabOrderRepository(db *mongo.Database) *LabOrderRepository {
	return &LabOrderRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *LabOrderRepository) Create(ctx context.Context, order *model.LabOrder) error {
	order.CreatedAt = nowUTC()
	order.UpdatedAt = order.CreatedAt
	if order.CreationDate.IsZero() {
		order.CreationDate = order.CreatedAt
	}
	res, err := r.coll(collLabOrders).InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *LabOrderRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.LabOrder, error) {
	var order model.LabOrder
	err := r.coll(collLabOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &order, nil
}

func (r *LabOrderRepository) List(ctx context.Context, filters *model.LabOrderFilters) ([]*model.LabOrder, int64, error) {
	filter := bson.M{}
	if filters.AppointmentID != "" {
		if aid, ok := model.ParseObjectID(filters.AppointmentID); ok {
			filter["appointment_id"] = aid
		}
	}
	if filters.UserID != "" {
		if uid, ok := model.ParseObjectID(filters.UserID); ok {
			filter["user_id"] = uid
		}
	}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}

	total, err := r.coll(collLabOrders).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "creation_date", Value: -1}}).
		SetSkip(int64(filters.Skip())).
		SetLimit(int64(filters.Limit))
	cursor, err := r.coll(collLabOrders).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var orders []*model.LabOrder
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *LabOrderRepository) Update(ctx context.Context, order *model.LabOrder) error {
	order.UpdatedAt = nowUTC()
	res, err := r.coll(collLabOrders).ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LabOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll(collLabOrders).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LabOrderRepository) SetProduct(ctx context.Context, id primitive.ObjectID, index int, product model.Product) error {
	return r.setArrayElement(ctx, collLabOrders, bson.M{"_id": id}, "products", index, product)
}

func (r *LabOrderRepository) PushProducts(ctx context.Context, id primitive.ObjectID, products []model.Product) error {
	return r.pushArrayElements(ctx, collLabOrders, bson.M{"_id": id}, "products", products)
}

func (r *LabOrderRepository) SetProducts(ctx context.Context, id primitive.ObjectID, products []model.Product) error {
	update := bson.M{"$set": bson.M{"products": products, "updated_at": nowUTC()}}
	res, err := r.coll(collLabOrders).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LabOrderRepository) BlankProduct(ctx context.Context, id primitive.ObjectID, index int) error {
	return r.blankArrayElement(ctx, collLabOrders, bson.M{"_id": id}, "products", index)
}

func (r *LabOrderRepository) CompactProducts(ctx context.Context, id primitive.ObjectID) error {
	return r.compactArray(ctx, collLabOrders, bson.M{"_id": id}, "products")
}
