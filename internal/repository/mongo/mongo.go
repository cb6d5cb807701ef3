package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontosys/clinic-api/internal/config"
	"github.com/odontosys/clinic-api/pkg/metrics"
)

// Collection names
const (
	collRoles          = "roles"
	collUsers          = "users"
	collPatients       = "patients"
	collAppointments   = "appointments"
	collHistories      = "clinical_histories"
	collProcedureTypes = "procedure_types"
	collLabOrders      = "lab_orders"
)

// NewDB establishes the single shared client and returns the database
// handle. The client is reused for the whole process; teardown happens at
// process exit via Disconnect in main.
func NewDB(cfg config.MongoConfig, m *metrics.Metrics) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI)
	if m != nil {
		opts.SetMonitor(commandMonitor(m))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client.Database(cfg.Database), nil
}

// commandMonitor instruments every store command with the shared metrics.
func commandMonitor(m *metrics.Metrics) *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			m.StoreOperations.WithLabelValues(e.CommandName, "ok").Inc()
			m.StoreLatency.WithLabelValues(e.CommandName).Observe(e.Duration.Seconds())
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			m.StoreOperations.WithLabelValues(e.CommandName, "error").Inc()
			m.StoreLatency.WithLabelValues(e.CommandName).Observe(e.Duration.Seconds())
		},
	}
}

// EnsureIndexes provisions the secondary indexes. Already-existing or
// conflicting-options responses are treated as success so repeated startups,
// including concurrent ones, are safe.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
			{Keys: bson.D{{Key: "role_name", Value: 1}}},
		},
		collRoles: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collAppointments: {
			{Keys: bson.D{{Key: "patient_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		collHistories: {
			{Keys: bson.D{{Key: "patient_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collProcedureTypes: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collLabOrders: {
			{Keys: bson.D{{Key: "appointment_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}

	for coll, models := range specs {
		for _, m := range models {
			if _, err := db.Collection(coll).Indexes().CreateOne(ctx, m); err != nil {
				if isIndexConflict(err) {
					continue
				}
				return fmt.Errorf("failed to create index on %s: %w", coll, err)
			}
		}
	}
	return nil
}

// isIndexConflict reports whether err is the server telling us the index is
// already there (codes 85 IndexOptionsConflict, 86 IndexKeySpecsConflict, 68
// IndexAlreadyExists).
func isIndexConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 68, 85, 86:
			return true
		}
	}
	return strings.Contains(err.Error(), "already exists")
}

// nowUTC is the single clock used for document timestamps.
func nowUTC() time.Time {
	return time.Now().UTC()
}
