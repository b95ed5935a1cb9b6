package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"exam-prep-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContestResultStore keeps contest submissions; the user_contest_unique
// index rejects a second submission.
type ContestResultStore struct {
	coll      *mongo.Collection
	rankLocks sync.Map
}

func NewContestResultStore(db *mongo.Database) *ContestResultStore {
	return &ContestResultStore{coll: db.Collection(contestResultsCollection)}
}

func (s *ContestResultStore) Insert(ctx context.Context, result *domain.ContestResult) error {
	_, err := s.coll.InsertOne(ctx, result)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateSubmission
	}
	if err != nil {
		return fmt.Errorf("insert contest result: %w", err)
	}
	return nil
}

func (s *ContestResultStore) ListByContest(ctx context.Context, contestID string) ([]domain.ContestResult, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "score", Value: -1},
		{Key: "timeTakenSeconds", Value: 1},
		{Key: "submittedAt", Value: 1},
		{Key: "_id", Value: 1},
	})
	return s.find(ctx, bson.M{"contestId": contestID}, opts)
}

func (s *ContestResultStore) ListByUser(ctx context.Context, userID string) ([]domain.ContestResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}})
	return s.find(ctx, bson.M{"userId": userID}, opts)
}

func (s *ContestResultStore) Find(ctx context.Context, userID, contestID string) (domain.ContestResult, error) {
	var r domain.ContestResult
	err := s.coll.FindOne(ctx, bson.M{"userId": userID, "contestId": contestID}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ContestResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.ContestResult{}, fmt.Errorf("find contest result: %w", err)
	}
	return r, nil
}

// Rerank reads the contest's results and writes the ranks with one unordered
// bulk write. A standalone server has no multi-document transaction, so the
// in-process mutex serialises reranks here and the service's CreationLock
// does so across processes.
func (s *ContestResultStore) Rerank(ctx context.Context, contestID string, rank func([]domain.ContestResult) []domain.ContestResult) ([]domain.ContestResult, error) {
	mu := s.rankLock(contestID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.ListByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	ranked := rank(current)
	if len(ranked) == 0 {
		return ranked, nil
	}

	models := make([]mongo.WriteModel, 0, len(ranked))
	for _, r := range ranked {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": r.ID, "contestId": contestID}).
			SetUpdate(bson.M{"$set": bson.M{"rank": r.Rank}}))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return nil, fmt.Errorf("update ranks: %w", err)
	}
	return ranked, nil
}

func (s *ContestResultStore) rankLock(contestID string) *sync.Mutex {
	v, _ := s.rankLocks.LoadOrStore(contestID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *ContestResultStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.ContestResult, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list contest results: %w", err)
	}
	out := make([]domain.ContestResult, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode contest results: %w", err)
	}
	return out, nil
}

type QuizResultStore struct {
	coll *mongo.Collection
}

func NewQuizResultStore(db *mongo.Database) *QuizResultStore {
	return &QuizResultStore{coll: db.Collection(resultsCollection)}
}

func (s *QuizResultStore) Insert(ctx context.Context, result *domain.Result) error {
	if _, err := s.coll.InsertOne(ctx, result); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *QuizResultStore) FindByID(ctx context.Context, id string) (domain.Result, error) {
	var r domain.Result
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("find result: %w", err)
	}
	return r, nil
}

func (s *QuizResultStore) ListByUser(ctx context.Context, userID string) ([]domain.Result, error) {
	return s.find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}}))
}

func (s *QuizResultStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.Result, error) {
	return s.find(ctx, bson.M{"quizId": quizID}, options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}}))
}

func (s *QuizResultStore) ListByContestType(ctx context.Context, contestType string) ([]domain.Result, error) {
	return s.find(ctx, bson.M{"contestType": contestType}, options.Find().SetSort(bson.D{{Key: "completedAt", Value: 1}}))
}

func (s *QuizResultStore) ListCompletedBetween(ctx context.Context, contestType string, from, to time.Time) ([]domain.Result, error) {
	return s.find(ctx, windowFilter(contestType, from, to), options.Find())
}

func (s *QuizResultStore) ExistsCompletedBetween(ctx context.Context, userID, contestType string, from, to time.Time) (bool, error) {
	filter := windowFilter(contestType, from, to)
	filter["userId"] = userID
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check participation: %w", err)
	}
	return n > 0, nil
}

func windowFilter(contestType string, from, to time.Time) bson.M {
	return bson.M{
		"contestType": contestType,
		"completedAt": bson.M{"$gte": from, "$lt": to},
	}
}

func (s *QuizResultStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Result, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.Result, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return out, nil
}
