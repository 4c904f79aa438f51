// Package fake provides an in-memory quiz.Store for tests.
package fake

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	qberrors "github.com/quizzbuzz/quizzbuzz/pkg/errors"
	"github.com/quizzbuzz/quizzbuzz/services/quizsvc/internal/quiz"
)

type Store struct {
	mu      sync.Mutex
	order   []string
	quizzes map[string]quiz.Quiz

	// Err, when set, is returned by every operation after id parsing.
	Err error
	// Now stamps added_at; defaults to time.Now.
	Now func() time.Time
}

var _ quiz.Store = &Store{}

func NewStore() *Store {
	return &Store{
		quizzes: map[string]quiz.Quiz{},
		Now:     time.Now,
	}
}

// Seed stores q as is, keeping its id and added_at.
func (s *Store) Seed(q quiz.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[q.Id]; !ok {
		s.order = append(s.order, q.Id)
	}
	s.quizzes[q.Id] = q
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quizzes)
}

func checkId(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return qberrors.NewInvalidIdentifier(fmt.Sprintf("invalid quiz id %q", id))
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.Now().UTC().Truncate(time.Millisecond)
}

func (s *Store) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	if err := checkId(id); err != nil {
		return quiz.Quiz{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return quiz.Quiz{}, s.Err
	}
	q, ok := s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, qberrors.NewNotFound(fmt.Sprintf("quiz %s not found", id))
	}
	return q, nil
}

func (s *Store) CreateQuiz(_ context.Context, req quiz.QuizRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	id := primitive.NewObjectID().Hex()
	s.quizzes[id] = fromRequest(id, req, s.timestamp())
	s.order = append(s.order, id)
	return id, nil
}

func (s *Store) UpdateQuiz(_ context.Context, id string, req quiz.QuizRequest) error {
	if err := checkId(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.quizzes[id]; ok {
		s.quizzes[id] = fromRequest(id, req, s.timestamp())
	}
	return nil
}

func (s *Store) DeleteQuiz(_ context.Context, id string) error {
	if err := checkId(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.remove(id)
	return nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.filter(func(quiz.Quiz) bool { return true }), nil
}

func (s *Store) ListRecentQuizzes(_ context.Context) ([]quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	all := s.filter(func(quiz.Quiz) bool { return true })
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].AddedAt.After(all[j].AddedAt)
	})
	if len(all) > quiz.RecentLimit {
		all = all[:quiz.RecentLimit]
	}
	return all, nil
}

func (s *Store) SearchQuizzes(_ context.Context, title string) ([]quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	needle := strings.ToLower(title)
	return s.filter(func(q quiz.Quiz) bool {
		return strings.Contains(strings.ToLower(q.Title), needle)
	}), nil
}

func (s *Store) DeleteTaggedQuizzes(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	matches := s.filter(func(q quiz.Quiz) bool {
		return len(q.Tags) == 1 && q.Tags[0] == quiz.FixedDeleteTag
	})
	for _, q := range matches {
		s.remove(q.Id)
	}
	return int64(len(matches)), nil
}

func (s *Store) filter(keep func(quiz.Quiz) bool) []quiz.Quiz {
	out := make([]quiz.Quiz, 0)
	for _, id := range s.order {
		if q := s.quizzes[id]; keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func (s *Store) remove(id string) {
	if _, ok := s.quizzes[id]; !ok {
		return
	}
	delete(s.quizzes, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func fromRequest(id string, req quiz.QuizRequest, addedAt time.Time) quiz.Quiz {
	return quiz.Quiz{
		Id:        id,
		Title:     req.Title,
		Author:    req.Author,
		Questions: req.Questions,
		AddedAt:   addedAt,
		Tags:      req.Tags,
	}
}
