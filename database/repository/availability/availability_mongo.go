package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"vendly/database"
	"vendly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const queryTimeout = 5 * time.Second

// MongoAvailabilityRepo implements Repository on MongoDB.
type MongoAvailabilityRepo struct {
	templateColl *mongo.Collection
	slotColl     *mongo.Collection
}

func NewMongoAvailabilityRepo() *MongoAvailabilityRepo {
	db := database.Database()
	repo := &MongoAvailabilityRepo{
		templateColl: db.Collection("availability_templates"),
		slotColl:     db.Collection("availability_slots"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoAvailabilityRepo) UpsertTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tpl.UpdatedAt = time.Now()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = tpl.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := repo.templateColl.ReplaceOne(ctx, bson.M{"id": tpl.ID}, tpl, opts); err != nil {
		return fmt.Errorf("failed to upsert availability template %s: %w", tpl.ID, err)
	}
	return nil
}

func (repo *MongoAvailabilityRepo) GetTemplate(ctx context.Context, id string) (*models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var tpl models.AvailabilityTemplate
	err := repo.templateColl.FindOne(ctx, bson.M{"id": id}).Decode(&tpl)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability template %s: %w", id, err)
	}
	return &tpl, nil
}

func (repo *MongoAvailabilityRepo) ListTemplates(ctx context.Context, vendorID string) ([]models.AvailabilityTemplate, error) {
	return repo.listTemplates(ctx, bson.M{"vendor_id": vendorID})
}

func (repo *MongoAvailabilityRepo) ListTemplatesForDay(ctx context.Context, vendorID string, day models.Weekday) ([]models.AvailabilityTemplate, error) {
	return repo.listTemplates(ctx, bson.M{"vendor_id": vendorID, "day": day})
}

func (repo *MongoAvailabilityRepo) listTemplates(ctx context.Context, filter bson.M) ([]models.AvailabilityTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "start_minute", Value: 1}})
	cursor, err := repo.templateColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.AvailabilityTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode availability templates: %w", err)
	}
	return templates, nil
}

func (repo *MongoAvailabilityRepo) DeleteTemplate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := repo.templateColl.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete availability template %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// ReplaceSlots runs purge-then-insert inside a session so readers never see a
// half-regenerated day.
func (repo *MongoAvailabilityRepo) ReplaceSlots(ctx context.Context, vendorID string, day models.Weekday, slots []models.AvailabilitySlot) error {
	client := repo.slotColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{"vendor_id": vendorID, "day": day}
		if _, err := repo.slotColl.DeleteMany(sc, filter); err != nil {
			return fmt.Errorf("purge slots failed: %w", err)
		}
		if len(slots) == 0 {
			return nil
		}
		docs := make([]interface{}, len(slots))
		for i := range slots {
			docs[i] = slots[i]
		}
		if _, err := repo.slotColl.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("insert slots failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("slot regeneration transaction failed: %w", err)
	}
	return nil
}

func (repo *MongoAvailabilityRepo) QuerySlots(ctx context.Context, vendorID, serviceID string, day models.Weekday) ([]models.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	serviceMatch := []interface{}{"", nil}
	if serviceID != "" {
		serviceMatch = append(serviceMatch, serviceID)
	}
	filter := bson.M{
		"vendor_id":  vendorID,
		"day":        day,
		"active":     true,
		"service_id": bson.M{"$in": serviceMatch},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_minute", Value: 1}})
	cursor, err := repo.slotColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.AvailabilitySlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode availability slots: %w", err)
	}
	return slots, nil
}
