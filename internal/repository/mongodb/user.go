package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository stores users in the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id models.UserID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) UserExists(ctx context.Context, email, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, identityFilter(email, username), options.Count().SetLimit(1))
	return n > 0, err
}

func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, repository.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// identityFilter matches a user holding either the email or the username.
func identityFilter(email, username string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}
}
