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

type AppointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	appt.CreatedAt = nowUTC()
	appt.UpdatedAt = appt.CreatedAt
	res, err := r.coll(collAppointments).InsertOne(ctx, appt)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid
	}
	return nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.coll(collAppointments).FindOne(ctx, notDeleted(bson.M{"_id": id})).Decode(&appt)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &appt, nil
}

func (r *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	filter := notDeleted(bson.M{})
	if filters.PatientID != "" {
		filter["patient_id"] = filters.PatientID
	}
	if filters.UserID != "" {
		if uid, ok := model.ParseObjectID(filters.UserID); ok {
			filter["user_id"] = uid
		}
	}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	dateRange := bson.M{}
	if filters.From != nil {
		dateRange["$gte"] = *filters.From
	}
	if filters.To != nil {
		dateRange["$lte"] = *filters.To
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	total, err := r.coll(collAppointments).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64(filters.Skip())).
		SetLimit(int64(filters.Limit))
	cursor, err := r.coll(collAppointments).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var appts []*model.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	appt.UpdatedAt = nowUTC()
	res, err := r.coll(collAppointments).ReplaceOne(ctx, bson.M{"_id": appt.ID}, appt)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := nowUTC()
	update := bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}}
	res, err := r.coll(collAppointments).UpdateOne(ctx, notDeleted(bson.M{"_id": id}), update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll(collAppointments).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) SetLineItem(ctx context.Context, id primitive.ObjectID, index int, item model.LineItem, total float64) error {
	update := bson.M{"$set": bson.M{
		fmt.Sprintf("line_items.%d", index): item,
		"total":                             total,
		"updated_at":                        nowUTC(),
	}}
	res, err := r.coll(collAppointments).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) PushLineItems(ctx context.Context, id primitive.ObjectID, items []model.LineItem, total float64) error {
	update := bson.M{
		"$push": bson.M{"line_items": bson.M{"$each": items}},
		"$set":  bson.M{"total": total, "updated_at": nowUTC()},
	}
	res, err := r.coll(collAppointments).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) BlankLineItem(ctx context.Context, id primitive.ObjectID, index int) error {
	return r.blankArrayElement(ctx, collAppointments, bson.M{"_id": id}, "line_items", index)
}

func (r *AppointmentRepository) CompactLineItems(ctx context.Context, id primitive.ObjectID) error {
	return r.compactArray(ctx, collAppointments, bson.M{"_id": id}, "line_items")
}

func (r *AppointmentRepository) SetTotal(ctx context.Context, id primitive.ObjectID, total float64) error {
	update := bson.M{"$set": bson.M{"total": total, "updated_at": nowUTC()}}
	res, err := r.coll(collAppointments).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) CountByPatient(ctx context.Context, patientID string) (int64, error) {
	return r.coll(collAppointments).CountDocuments(ctx, bson.M{"patient_id": patientID})
}

// CountByLineItemName counts appointments whose line items still reference a
// procedure by its display name.
func (r *AppointmentRepository) CountByLineItemName(ctx context.Context, name string) (int64, error) {
	return r.coll(collAppointments).CountDocuments(ctx, bson.M{"line_items.name": name})
}

func notDeleted(filter bson.M) bson.M {
	filter["deleted_at"] = bson.M{"$exists": false}
	return filter
}
