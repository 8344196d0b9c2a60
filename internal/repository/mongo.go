package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/juleeperween/charity-backend/internal/models"
)

const collectionName = "donations"

// MongoRepository stores donations in a MongoDB collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection(collectionName)}
}

// EnsureIndexes creates the secondary indexes the lookup paths rely on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{Keys: bson.M{"donor_id": 1}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.M{"payment_intent_id": 1}},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexModels); err != nil {
		return &models.StorageError{Op: "create indexes", Err: err}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &models.ValidationError{Field: "donationId", Reason: "malformed id"}
	}
	return oid, nil
}

func (r *MongoRepository) Insert(ctx context.Context, d *models.Donation) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, d); err != nil {
		return "", &models.StorageError{Op: "insert donation", Err: err}
	}
	return d.ID.Hex(), nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d models.Donation
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, &models.StorageError{Op: "fetch donation", Err: err}
	}
	return &d, nil
}

func (r *MongoRepository) FindByDonorID(ctx context.Context, donorID string) (*models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d models.Donation
	if err := r.col.FindOne(ctx, bson.M{"donor_id": donorID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, &models.StorageError{Op: "fetch donation by donor", Err: err}
	}
	return &d, nil
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, &models.StorageError{Op: "list donations", Err: err}
	}
	defer cur.Close(ctx)

	var donations []models.Donation
	if err := cur.All(ctx, &donations); err != nil {
		return nil, &models.StorageError{Op: "decode donations", Err: err}
	}
	return donations, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Donation, error) {
	return r.update(ctx, id, bson.M{"status": status})
}

func (r *MongoRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Donation, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	return r.update(ctx, id, set)
}

func (r *MongoRepository) update(ctx context.Context, id string, set bson.M) (*models.Donation, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set["updated_at"] = time.Now()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, &models.StorageError{Op: "update donation", Err: err}
	}
	if res.MatchedCount == 0 {
		return nil, models.ErrNotFound
	}

	var updated models.Donation
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&updated); err != nil {
		return nil, &models.StorageError{Op: "fetch updated donation", Err: err}
	}
	return &updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return &models.StorageError{Op: "delete donation", Err: err}
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
