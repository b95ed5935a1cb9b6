package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exam-prep-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContestStore struct {
	coll *mongo.Collection
}

func NewContestStore(db *mongo.Database) *ContestStore {
	return &ContestStore{coll: db.Collection(contestsCollection)}
}

func (s *ContestStore) CreateIfAbsent(ctx context.Context, contest *domain.Contest) (bool, error) {
	_, err := s.coll.InsertOne(ctx, contest)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert contest: %w", err)
	}
	return true, nil
}

func (s *ContestStore) DeactivateOthers(ctx context.Context, contestType domain.ContestType, keepID string, at time.Time) error {
	filter := bson.M{
		"contestType": contestType,
		"_id":         bson.M{"$ne": keepID},
		"isActive":    true,
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": at}}
	if _, err := s.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("deactivate contests: %w", err)
	}
	return nil
}

func (s *ContestStore) FindByID(ctx context.Context, id string) (domain.Contest, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *ContestStore) FindByPeriod(ctx context.Context, contestType domain.ContestType, periodKey string) (domain.Contest, error) {
	return s.findOne(ctx, bson.M{"contestType": contestType, "periodKey": periodKey})
}

func (s *ContestStore) findOne(ctx context.Context, filter bson.M) (domain.Contest, error) {
	var c domain.Contest
	err := s.coll.FindOne(ctx, filter).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Contest{}, domain.ErrContestNotFound
	}
	if err != nil {
		return domain.Contest{}, fmt.Errorf("find contest: %w", err)
	}
	return c, nil
}

func (s *ContestStore) ListByType(ctx context.Context, contestType domain.ContestType) ([]domain.Contest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.find(ctx, bson.M{"contestType": contestType}, opts)
}

func (s *ContestStore) ListRecent(ctx context.Context, limit int) ([]domain.Contest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return s.find(ctx, bson.M{}, opts)
}

func (s *ContestStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Contest, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	out := make([]domain.Contest, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode contests: %w", err)
	}
	return out, nil
}
