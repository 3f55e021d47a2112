package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gameplatform/internal/model"
)

// MatchRepo durably stores finished match results. The coordination core
// only ever writes through this interface; how results are stored is not
// its concern.
type MatchRepo interface {
	Insert(ctx context.Context, result *model.MatchResult) error
	ListBySession(ctx context.Context, sessionCode string) ([]model.MatchResult, error)
}

type matchRepo struct {
	collection *mongo.Collection
}

func NewMatchRepo(db *mongo.Database) MatchRepo {
	return &matchRepo{collection: db.Collection("matches")}
}

func (r *matchRepo) Insert(ctx context.Context, result *model.MatchResult) error {
	_, err := r.collection.InsertOne(ctx, result)
	return err
}

func (r *matchRepo) ListBySession(ctx context.Context, sessionCode string) ([]model.MatchResult, error) {
	cur, err := r.collection.Find(ctx, bson.M{"sessionCode": sessionCode},
		options.Find().SetSort(bson.M{"recordedAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []model.MatchResult
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
