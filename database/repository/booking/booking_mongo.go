package bookingRepo

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

// MongoBookingRepo implements Repository on MongoDB. It also holds the
// payments collection so cancellation can read the paid sum in the same
// transaction as the cancellation write.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	paymentColl *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	db := database.Database()
	repo := &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		paymentColl: db.Collection("payments"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoBookingRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_reference"),
		},
		// Overlap query pattern: vendor + status + scheduled window.
		{
			Keys: bson.D{
				{Key: "vendor_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "scheduled_at", Value: 1},
			},
			Options: options.Index().SetName("vendor_status_scheduled_idx"),
		},
		{
			Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "scheduled_at", Value: -1}},
			Options: options.Index().SetName("customer_scheduled_idx"),
		},
	}
	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Printf("failed to create booking indexes: %v", err)
	}
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"id": id})
}

func (repo *MongoBookingRepo) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"reference": reference})
}

func (repo *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var b models.Booking
	err := repo.bookingColl.FindOne(ctx, filter).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	b.UpdatedAt = time.Now()
	res, err := repo.bookingColl.ReplaceOne(ctx, bson.M{"id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (repo *MongoBookingRepo) ListByVendor(ctx context.Context, vendorID string, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"vendor_id":    vendorID,
		"scheduled_at": bson.M{"$gte": from, "$lt": to},
	}
	return repo.list(ctx, filter)
}

func (repo *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return repo.list(ctx, bson.M{"customer_id": customerID})
}

func (repo *MongoBookingRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":       bson.M{"$in": models.ActiveBookingStatuses},
		"scheduled_at": bson.M{"$gte": from, "$lt": to},
	}
	return repo.list(ctx, filter)
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// overlapFilter is the symmetric interval-overlap test expressed as a query:
// existing.scheduled_at < end AND existing.scheduled_at + duration > start.
// Durations vary per booking, so the end side is computed with $expr.
func overlapFilter(vendorID string, start, end time.Time, excludeID string) bson.M {
	filter := bson.M{
		"vendor_id":    vendorID,
		"status":       bson.M{"$in": models.ActiveBookingStatuses},
		"scheduled_at": bson.M{"$lt": end},
		"$expr": bson.M{
			"$gt": bson.A{
				bson.M{"$add": bson.A{
					"$scheduled_at",
					bson.M{"$multiply": bson.A{"$duration", 60 * 1000}},
				}},
				start,
			},
		},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

func (repo *MongoBookingRepo) CountOverlapping(ctx context.Context, vendorID string, start, end time.Time, excludeID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	count, err := repo.bookingColl.CountDocuments(ctx, overlapFilter(vendorID, start, end, excludeID))
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return int(count), nil
}
