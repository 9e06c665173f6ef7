package action

import (
	"context"
	"time"

	"wa-assist/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActionRepository is the config store adapter: plain tenant-scoped CRUD,
// the only component that touches the actions collection.
type ActionRepository interface {
	Create(ctx context.Context, action *ActionConfig) error
	Get(ctx context.Context, tenantID, id string) (*ActionConfig, error)
	ListByTenant(ctx context.Context, tenantID string) ([]ActionConfig, error)
	Update(ctx context.Context, action *ActionConfig) error
	Delete(ctx context.Context, tenantID, id string) error
}

type DeliveryLogRepository interface {
	Create(ctx context.Context, log *DeliveryLog) error
	ListByAction(ctx context.Context, tenantID, actionID string, limit int64) ([]DeliveryLog, error)
	ListByTenant(ctx context.Context, tenantID string, limit int64) ([]DeliveryLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type ActionRepositoryImpl struct {
	collection *mongo.Collection
}

func NewActionRepository(db *database.MongodbDB) ActionRepository {
	return &ActionRepositoryImpl{
		collection: db.DB.Collection("actions"),
	}
}

func (r *ActionRepositoryImpl) Create(ctx context.Context, action *ActionConfig) error {
	if action.ID.IsZero() {
		action.ID = primitive.NewObjectID()
	}
	action.CreatedAt = time.Now()
	action.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, action)
	return err
}

func (r *ActionRepositoryImpl) Get(ctx context.Context, tenantID, id string) (*ActionConfig, error) {
	filter, err := tenantScopedFilter(tenantID, id)
	if err != nil {
		return nil, err
	}

	var action ActionConfig
	if err := r.collection.FindOne(ctx, filter).Decode(&action); err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *ActionRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]ActionConfig, error) {
	oid, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var actions []ActionConfig
	if err = cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *ActionRepositoryImpl) Update(ctx context.Context, action *ActionConfig) error {
	action.UpdatedAt = time.Now()

	// created_at is immutable: replace everything else.
	updates := bson.M{
		"name":             action.Name,
		"type":             action.Type,
		"event":            action.Event,
		"is_active":        action.IsActive,
		"url":              action.URL,
		"secret":           action.Secret,
		"recipient":        action.Recipient,
		"message_template": action.MessageTemplate,
		"trigger_tags":     action.TriggerTags,
		"filter_script":    action.FilterScript,
		"updated_at":       action.UpdatedAt,
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": action.ID, "tenant_id": action.TenantID},
		bson.M{"$set": updates},
	)
	return err
}

// Delete is idempotent: removing an id that does not exist succeeds.
func (r *ActionRepositoryImpl) Delete(ctx context.Context, tenantID, id string) error {
	filter, err := tenantScopedFilter(tenantID, id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, filter)
	return err
}

func tenantScopedFilter(tenantID, id string) (bson.M, error) {
	tenantOID, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid, "tenant_id": tenantOID}, nil
}

type DeliveryLogRepositoryImpl struct {
	collection *mongo.Collection
}

func NewDeliveryLogRepository(db *database.MongodbDB) DeliveryLogRepository {
	return &DeliveryLogRepositoryImpl{
		collection: db.DB.Collection("delivery_logs"),
	}
}

func (r *DeliveryLogRepositoryImpl) Create(ctx context.Context, log *DeliveryLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	log.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, log)
	return err
}

func (r *DeliveryLogRepositoryImpl) ListByAction(ctx context.Context, tenantID, actionID string, limit int64) ([]DeliveryLog, error) {
	tenantOID, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return nil, err
	}
	actionOID, err := primitive.ObjectIDFromHex(actionID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"tenant_id": tenantOID, "action_id": actionOID}
	return r.find(ctx, filter, limit)
}

func (r *DeliveryLogRepositoryImpl) ListByTenant(ctx context.Context, tenantID string, limit int64) ([]DeliveryLog, error) {
	tenantOID, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return nil, err
	}

	return r.find(ctx, bson.M{"tenant_id": tenantOID}, limit)
}

func (r *DeliveryLogRepositoryImpl) find(ctx context.Context, filter bson.M, limit int64) ([]DeliveryLog, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []DeliveryLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *DeliveryLogRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
