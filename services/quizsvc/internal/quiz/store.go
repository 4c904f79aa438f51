package quiz

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/golang/glog"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	qberrors "github.com/quizzbuzz/quizzbuzz/pkg/errors"
)

// Store is the persistence gateway used by the HTTP handlers.
type Store interface {
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	CreateQuiz(ctx context.Context, req QuizRequest) (string, error)
	UpdateQuiz(ctx context.Context, id string, req QuizRequest) error
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	ListRecentQuizzes(ctx context.Context) ([]Quiz, error)
	SearchQuizzes(ctx context.Context, title string) ([]Quiz, error)
	DeleteTaggedQuizzes(ctx context.Context) (int64, error)
}

// MongoStore implements Store on a single collection. The collection handle (and
// the client behind it) is shared by all requests.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{
		coll: coll,
		now:  time.Now,
	}
}

// BSON dates have millisecond precision.
func (s *MongoStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func parseId(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, qberrors.NewInvalidIdentifier(fmt.Sprintf("invalid quiz id %q", id))
	}
	return oid, nil
}

func queryError(op string, err error) error {
	return qberrors.NewConnectionError(fmt.Sprintf("%s: %s", op, err))
}

func (s *MongoStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	oid, err := parseId(id)
	if err != nil {
		return Quiz{}, err
	}

	raw, err := s.coll.FindOne(ctx, bson.D{{Key: fieldId, Value: oid}}).DecodeBytes()
	if err != nil {
		if pkgerrors.Is(err, mongo.ErrNoDocuments) {
			return Quiz{}, qberrors.NewNotFound(fmt.Sprintf("quiz %s not found", id))
		}
		return Quiz{}, queryError("find quiz", err)
	}

	quiz, err := NewQuizFromDocument(raw)
	if err != nil {
		return Quiz{}, pkgerrors.Wrapf(err, "quiz %s", id)
	}
	return quiz, nil
}

func (s *MongoStore) CreateQuiz(ctx context.Context, req QuizRequest) (string, error) {
	oid := primitive.NewObjectID()
	doc := NewQuizDocumentWithId(oid, req, s.timestamp())

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return "", queryError("insert quiz", err)
	}
	return oid.Hex(), nil
}

// UpdateQuiz replaces title, author, questions and tags and refreshes added_at.
// An id that matches no document is not an error.
func (s *MongoStore) UpdateQuiz(ctx context.Context, id string, req QuizRequest) error {
	oid, err := parseId(id)
	if err != nil {
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: fieldId, Value: oid}}, NewQuizDocument(req, s.timestamp()))
	if err != nil {
		return queryError("replace quiz", err)
	}
	if res.MatchedCount == 0 {
		glog.V(4).Infof("update of quiz %s matched no document", id)
	}
	return nil
}

func (s *MongoStore) DeleteQuiz(ctx context.Context, id string) error {
	oid, err := parseId(id)
	if err != nil {
		return err
	}

	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: fieldId, Value: oid}}); err != nil {
		return queryError("delete quiz", err)
	}
	return nil
}

func (s *MongoStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	return s.find(ctx, "list quizzes", bson.D{})
}

func (s *MongoStore) ListRecentQuizzes(ctx context.Context) ([]Quiz, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: fieldAddedAt, Value: -1}}).
		SetLimit(RecentLimit)
	return s.find(ctx, "list recent quizzes", bson.D{}, opts)
}

// SearchQuizzes matches title as a case-insensitive, unanchored literal substring.
func (s *MongoStore) SearchQuizzes(ctx context.Context, title string) ([]Quiz, error) {
	filter := bson.D{{Key: fieldTitle, Value: primitive.Regex{
		Pattern: regexp.QuoteMeta(title),
		Options: "i",
	}}}
	return s.find(ctx, "search quizzes", filter)
}

// DeleteTaggedQuizzes removes every quiz whose tags array equals [FixedDeleteTag].
// Quizzes carrying the tag next to other tags are kept.
func (s *MongoStore) DeleteTaggedQuizzes(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: fieldTags, Value: bson.A{FixedDeleteTag}}})
	if err != nil {
		return 0, queryError("delete tagged quizzes", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) find(ctx context.Context, op string, filter bson.D, opts ...*options.FindOptions) ([]Quiz, error) {
	cur, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, queryError(op, err)
	}
	defer cur.Close(ctx)

	quizzes := make([]Quiz, 0)
	for cur.Next(ctx) {
		quiz, err := NewQuizFromDocument(cur.Current)
		if err != nil {
			return nil, pkgerrors.Wrap(err, op)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := cur.Err(); err != nil {
		return nil, queryError(op, err)
	}
	return quizzes, nil
}
