package availabilityRepo

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (repo *MongoAvailabilityRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	templateIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "vendor_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetName("vendor_day_idx"),
		},
	}
	if _, err := repo.templateColl.Indexes().CreateMany(ctx, templateIndexes); err != nil {
		log.Printf("failed to create availability template indexes: %v", err)
	}

	slotIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Primary lookup pattern: (vendor, day, service-or-generic, active).
		{
			Keys: bson.D{
				{Key: "vendor_id", Value: 1},
				{Key: "day", Value: 1},
				{Key: "service_id", Value: 1},
				{Key: "active", Value: 1},
			},
			Options: options.Index().SetName("vendor_day_service_idx"),
		},
	}
	if _, err := repo.slotColl.Indexes().CreateMany(ctx, slotIndexes); err != nil {
		log.Printf("failed to create availability slot indexes: %v", err)
	}
}
