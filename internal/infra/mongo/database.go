// Package mongo stores contests, results and notifications in MongoDB.
// Uniqueness of contests per period and of submissions per user is enforced
// by the indexes created in EnsureIndexes.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	contestsCollection       = "contests"
	contestResultsCollection = "contest_results"
	resultsCollection        = "results"
	notificationsCollection  = "notifications"
	questionsCollection      = "questions"
	usersCollection          = "users"
)

// Connect dials the server, verifies it with a ping and returns the client
// together with the named database.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes the stores depend on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		contestsCollection: {
			{
				Keys: bson.D{{Key: "contestType", Value: 1}, {Key: "periodKey", Value: 1}},
				Options: options.Index().
					SetName("contest_period_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"periodKey": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		contestResultsCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "contestId", Value: 1}},
				Options: options.Index().SetName("user_contest_unique").SetUnique(true),
			},
			{Keys: bson.D{{Key: "contestId", Value: 1}, {Key: "score", Value: -1}, {Key: "timeTakenSeconds", Value: 1}}},
		},
		resultsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}}},
			{Keys: bson.D{{Key: "contestType", Value: 1}, {Key: "completedAt", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// idString renders a document id that may be an ObjectID or a plain string.
func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
