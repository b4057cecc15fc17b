package database

import (
	"context"
	"errors"
	"fmt"

	"devevent/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UsersCollection string = "users"

type UserStore struct {
	conn DatabaseProvider
}

func NewUserStore(conn DatabaseProvider) *UserStore {
	return &UserStore{conn: conn}
}

// GetUserData returns nil without error when the login is unknown.
func (s *UserStore) GetUserData(ctx context.Context, login string) (*model.UserData, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	var user model.UserData
	err = coll.FindOne(ctx, bson.D{primitive.E{Key: "login", Value: login}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("server side problem occured while reading user data from database: %w", err)
	}
	return &user, nil
}

// UpsertUser creates the user or replaces its password hash and role.
func (s *UserStore) UpsertUser(ctx context.Context, user model.UserData) error {
	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"password_hash": user.HashedPassword,
		"role":          user.Role,
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := coll.UpdateOne(ctx, bson.M{"login": user.Login}, update, opts); err != nil {
		return fmt.Errorf("upsert user %v: %w", user.Login, err)
	}
	return nil
}

func (s *UserStore) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := s.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(UsersCollection), nil
}
