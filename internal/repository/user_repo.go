package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"drawdash/internal/model"
)

type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	IncrementStats(ctx context.Context, id string, delta model.StatsDelta) error
	ReadStats(ctx context.Context, id string) (*model.UserStats, error)
}

type userRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(client *mongo.Client, database string) UserRepo {
	db := client.Database(database)
	return &userRepo{
		collection: db.Collection("users"),
	}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	// IDs are ObjectID hex strings so they travel through JWT claims and
	// JSON without conversion.
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // not registered
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) IncrementStats(ctx context.Context, id string, delta model.StatsDelta) error {
	inc := bson.M{}
	if delta.GamesPlayed != 0 {
		inc["stats.gamesPlayed"] = delta.GamesPlayed
	}
	if delta.TotalScore != 0 {
		inc["stats.totalScore"] = delta.TotalScore
	}
	if delta.Wins != 0 {
		inc["stats.wins"] = delta.Wins
	}
	if delta.TotalGuesses != 0 {
		inc["stats.totalGuesses"] = delta.TotalGuesses
	}
	if delta.CorrectGuesses != 0 {
		inc["stats.correctGuesses"] = delta.CorrectGuesses
	}
	if len(inc) == 0 {
		return nil
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": inc})
	return err
}

func (r *userRepo) ReadStats(ctx context.Context, id string) (*model.UserStats, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, mongo.ErrNoDocuments
	}
	return &user.Stats, nil
}
