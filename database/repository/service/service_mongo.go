package serviceRepo

import (
	"context"
	"errors"
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

// ErrServiceNotFound is returned when a service id does not exist.
var ErrServiceNotFound = errors.New("service not found")

// Repository persists a vendor's service catalogue.
type Repository interface {
	Upsert(ctx context.Context, svc *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	ListActiveByVendor(ctx context.Context, vendorID string) ([]models.Service, error)
	Delete(ctx context.Context, id string) error
}

// MongoServiceRepo implements Repository on MongoDB.
type MongoServiceRepo struct {
	coll *mongo.Collection
}

func NewMongoServiceRepo() *MongoServiceRepo {
	repo := &MongoServiceRepo{coll: database.Database().Collection("services")}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoServiceRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "vendor_id", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("vendor_active_idx"),
		},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Printf("failed to create service indexes: %v", err)
	}
}

func (repo *MongoServiceRepo) Upsert(ctx context.Context, svc *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	svc.UpdatedAt = time.Now()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = svc.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := repo.coll.ReplaceOne(ctx, bson.M{"id": svc.ID}, svc, opts); err != nil {
		return fmt.Errorf("failed to upsert service %s: %w", svc.ID, err)
	}
	return nil
}

func (repo *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var svc models.Service
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service %s: %w", id, err)
	}
	return &svc, nil
}

func (repo *MongoServiceRepo) ListActiveByVendor(ctx context.Context, vendorID string) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := repo.coll.Find(ctx, bson.M{"vendor_id": vendorID, "active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list services for vendor %s: %w", vendorID, err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (repo *MongoServiceRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete service %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrServiceNotFound
	}
	return nil
}
