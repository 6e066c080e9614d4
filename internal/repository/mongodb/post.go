package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository stores posts in the posts collection.
type PostRepository struct {
	coll *mongo.Collection
}

// newestFirst orders by creation time, then by _id for posts sharing a
// millisecond. Post ids are UUIDv7 and sort in creation order.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *PostRepository) ListPosts(ctx context.Context) ([]models.Post, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) GetPost(ctx context.Context, id models.PostID) (models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Post{}, repository.ErrNotFound
	}
	return post, err
}

func (r *PostRepository) CreatePost(ctx context.Context, post models.Post) error {
	_, err := r.coll.InsertOne(ctx, post)
	return err
}

// UpdateOwnedPost runs one FindOneAndUpdate filtered on both _id and authorId.
func (r *PostRepository) UpdateOwnedPost(ctx context.Context, id models.PostID, owner models.UserID, update models.PostUpdate, now time.Time) (models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err := r.coll.FindOneAndUpdate(ctx, ownedFilter(id, owner), updateDocument(update, now), opts).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Post{}, r.missOrForeign(ctx, id)
	}
	return post, err
}

// DeleteOwnedPost runs one DeleteOne filtered on both _id and authorId.
func (r *PostRepository) DeleteOwnedPost(ctx context.Context, id models.PostID, owner models.UserID) error {
	res, err := r.coll.DeleteOne(ctx, ownedFilter(id, owner))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return r.missOrForeign(ctx, id)
	}
	return nil
}

func (r *PostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}

func (r *PostRepository) missOrForeign(ctx context.Context, id models.PostID) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrNotOwner
}

func ownedFilter(id models.PostID, owner models.UserID) bson.M {
	return bson.M{"_id": id, "authorId": owner}
}

// updateDocument builds the $set for the supplied fields; updatedAt is always set.
func updateDocument(update models.PostUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now.UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	return bson.M{"$set": set}
}
