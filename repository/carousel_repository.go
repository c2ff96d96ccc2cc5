package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
)

// CarouselRepository defines the data access operations for carousel entries.
type CarouselRepository interface {
	Create(ctx context.Context, carousel *models.Carousel) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Carousel, error)
	FindAll(ctx context.Context, activeOnly bool) ([]models.Carousel, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoCarouselRepo struct {
	collection *mongo.Collection
}

func NewMongoCarouselRepo(db *mongo.Database) CarouselRepository {
	return &mongoCarouselRepo{collection: db.Collection("carousels")}
}

func (r *mongoCarouselRepo) Create(ctx context.Context, carousel *models.Carousel) error {
	now := time.Now().UTC()
	carousel.CreatedAt = now
	carousel.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, carousel)
	if err != nil {
		return err
	}
	carousel.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoCarouselRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Carousel, error) {
	var carousel models.Carousel
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&carousel)
	if err != nil {
		return nil, err
	}
	return &carousel, nil
}

func (r *mongoCarouselRepo) FindAll(ctx context.Context, activeOnly bool) ([]models.Carousel, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var carousels []models.Carousel
	if err := cursor.All(ctx, &carousels); err != nil {
		return nil, err
	}
	return carousels, nil
}

func (r *mongoCarouselRepo) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	updates["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoCarouselRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
