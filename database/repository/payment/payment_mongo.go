package paymentRepo

import (
	"context"
	"fmt"
	"log"
	"time"

	"vendly/database"
	"vendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

// MongoPaymentRepo implements Repository on MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepo() *MongoPaymentRepo {
	repo := &MongoPaymentRepo{coll: database.Database().Collection("payments")}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoPaymentRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{{Key: "charge_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"charge_id": bson.M{"$type": "string", "$gt": ""}}).
				SetName("unique_charge_id"),
		},
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("booking_status_idx"),
		},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Printf("failed to create payment indexes: %v", err)
	}
}

func (repo *MongoPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := repo.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (repo *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

func (repo *MongoPaymentRepo) GetByChargeID(ctx context.Context, chargeID string) (*models.Payment, error) {
	return repo.findOne(ctx, bson.M{"charge_id": chargeID})
}

func (repo *MongoPaymentRepo) findOne(ctx context.Context, filter bson.M) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p models.Payment
	err := repo.coll.FindOne(ctx, filter).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return &p, nil
}

func (repo *MongoPaymentRepo) SetChargeID(ctx context.Context, paymentID, chargeID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := repo.coll.UpdateOne(ctx,
		bson.M{"id": paymentID},
		bson.M{"$set": bson.M{"charge_id": chargeID, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set charge id on payment %s: %w", paymentID, err)
	}
	if res.MatchedCount == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (repo *MongoPaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

func (repo *MongoPaymentRepo) SumCompletedForBooking(ctx context.Context, bookingID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"booking_id": bookingID, "status": models.PaymentCompleted}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := repo.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate completed payments: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode payment sum: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// lowerRankedStatuses returns the statuses a payment may transition out of
// when moving to next. Refunded is terminal and never appears.
func lowerRankedStatuses(next models.PaymentStatus) []models.PaymentStatus {
	all := []models.PaymentStatus{
		models.PaymentPending,
		models.PaymentProcessing,
		models.PaymentFailed,
		models.PaymentCompleted,
	}
	var out []models.PaymentStatus
	for _, s := range all {
		if s.Rank() < next.Rank() {
			out = append(out, s)
		}
	}
	return out
}

func (repo *MongoPaymentRepo) ApplyStatus(ctx context.Context, chargeID string, upd StatusUpdate) (*models.Payment, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{
		"status":     upd.Status,
		"updated_at": time.Now(),
	}
	if upd.ProcessedAt != nil {
		set["processed_at"] = upd.ProcessedAt
	}
	if upd.RefundedAt != nil {
		set["refunded_at"] = upd.RefundedAt
		set["refund_amount"] = upd.RefundAmount
		set["refund_reason"] = upd.RefundReason
	}
	if upd.RawResponse != "" {
		set["raw_response"] = upd.RawResponse
	}

	filter := bson.M{
		"charge_id": chargeID,
		"status":    bson.M{"$in": lowerRankedStatuses(upd.Status)},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Payment
	err := repo.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&p)
	if err == nil {
		return &p, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, fmt.Errorf("failed to apply payment status: %w", err)
	}

	// No document matched the guard: either the charge is unknown, or the
	// payment already sits at an equal or higher rank (stale/replayed event).
	current, err := repo.GetByChargeID(ctx, chargeID)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}
