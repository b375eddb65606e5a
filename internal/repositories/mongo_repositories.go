package repositories

import (
	"context"
	"errors"
	"time"

	"storefront-checkout/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Order reference repository
type orderReferenceRepository struct {
	collection *mongo.Collection
}

func NewOrderReferenceRepository(db *mongo.Database) OrderReferenceRepository {
	return &orderReferenceRepository{
		collection: db.Collection("order_references"),
	}
}

func (r *orderReferenceRepository) Create(ctx context.Context, ref *models.OrderReference) error {
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}

	filter := bson.M{"order_number": ref.OrderNumber}
	update := bson.M{"$setOnInsert": ref}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *orderReferenceRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.OrderReference, error) {
	var ref models.OrderReference
	err := r.collection.FindOne(ctx, bson.M{"order_number": orderNumber}).Decode(&ref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *orderReferenceRepository) UpdateStatus(ctx context.Context, orderNumber string, status models.OrderStatus) error {
	filter := bson.M{"order_number": orderNumber}
	update := bson.M{"$set": bson.M{
		"last_known_status": status,
		"status_checked_at": time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderReferenceRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.OrderReference, error) {
	refs := make([]models.OrderReference, 0)

	filter := bson.M{"session_id": sessionID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &refs); err != nil {
		return nil, err
	}

	return refs, nil
}
