package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"vendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// withTransaction runs fn inside a mongo session transaction, aborting on error.
func (repo *MongoBookingRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// CreateWithCapacityCheck counts overlapping active bookings and inserts the
// new one inside a single transaction. Without this discipline two concurrent
// requests can both observe free capacity and both insert.
func (repo *MongoBookingRepo) CreateWithCapacityCheck(ctx context.Context, b *models.Booking, capacity int) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		count, err := repo.bookingColl.CountDocuments(sc, overlapFilter(b.VendorID, b.ScheduledAt, b.EndsAt(), ""))
		if err != nil {
			return fmt.Errorf("overlap count failed: %w", err)
		}
		if int(count) >= capacity {
			return ErrCapacityExhausted
		}
		if _, err := repo.bookingColl.InsertOne(sc, b); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateReference
			}
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
	if err == ErrCapacityExhausted || err == ErrDuplicateReference {
		return err
	}
	if err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

// RescheduleWithCapacityCheck moves the booking to newStart, re-counting
// overlaps (excluding the booking itself) in the same transaction as the write.
func (repo *MongoBookingRepo) RescheduleWithCapacityCheck(ctx context.Context, b *models.Booking, newStart time.Time, capacity int) error {
	newEnd := newStart.Add(time.Duration(b.Duration) * time.Minute)

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		count, err := repo.bookingColl.CountDocuments(sc, overlapFilter(b.VendorID, newStart, newEnd, b.ID))
		if err != nil {
			return fmt.Errorf("overlap count failed: %w", err)
		}
		if int(count) >= capacity {
			return ErrCapacityExhausted
		}
		res, err := repo.bookingColl.UpdateOne(sc,
			bson.M{"id": b.ID, "status": models.BookingPending},
			bson.M{"$set": bson.M{"scheduled_at": newStart, "updated_at": time.Now()}},
		)
		if err != nil {
			return fmt.Errorf("reschedule update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			// The caller loaded the booking moments ago, so an unmatched
			// filter means the status guard lost to a concurrent transition.
			return ErrStatusConflict
		}
		return nil
	})
	if err == ErrCapacityExhausted || err == ErrStatusConflict {
		return err
	}
	if err != nil {
		return fmt.Errorf("reschedule transaction failed: %w", err)
	}

	b.ScheduledAt = newStart
	return nil
}

// CancelWithPaidSum marks the booking cancelled and returns the completed
// payment sum read under the same transaction.
func (repo *MongoBookingRepo) CancelWithPaidSum(ctx context.Context, b *models.Booking) (float64, error) {
	var paid float64

	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"booking_id": b.ID, "status": models.PaymentCompleted}}},
			{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
		}
		cursor, err := repo.paymentColl.Aggregate(sc, pipeline)
		if err != nil {
			return fmt.Errorf("paid sum aggregation failed: %w", err)
		}
		var results []struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.All(sc, &results); err != nil {
			return fmt.Errorf("paid sum decode failed: %w", err)
		}
		if len(results) > 0 {
			paid = results[0].Total
		}

		res, err := repo.bookingColl.UpdateOne(sc,
			bson.M{"id": b.ID, "status": bson.M{"$in": []models.BookingStatus{models.BookingPending, models.BookingConfirmed}}},
			bson.M{"$set": bson.M{
				"status":       models.BookingCancelled,
				"cancellation": b.Cancellation,
				"updated_at":   time.Now(),
			}},
		)
		if err != nil {
			return fmt.Errorf("cancellation update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrStatusConflict
		}
		return nil
	})
	if err == ErrStatusConflict {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("cancellation transaction failed: %w", err)
	}

	b.Status = models.BookingCancelled
	return paid, nil
}
