package quiz_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	qberrors "github.com/quizzbuzz/quizzbuzz/pkg/errors"
	"github.com/quizzbuzz/quizzbuzz/pkg/util"
	"github.com/quizzbuzz/quizzbuzz/services/quizsvc/internal/quiz"
	"github.com/quizzbuzz/quizzbuzz/services/quizsvc/internal/quiz/fake"
)

const validBody = `{"title":"T1","author":"A","questions":[{"question":"Q","correct_answer":"C","incorrect_answers":["X","Y"]}],"tags":["science"]}`

func newRouter(store quiz.Store) *mux.Router {
	qs := quiz.NewQuizService(store)
	r := mux.NewRouter()
	r.HandleFunc("/quiz", qs.CreateFunc).Methods("POST")
	r.HandleFunc("/quiz", qs.ListFunc).Methods("GET")
	r.HandleFunc("/quiz/recent", qs.ListRecentFunc).Methods("GET")
	r.HandleFunc("/quiz/delete", qs.DeleteTaggedFunc).Methods("DELETE")
	r.HandleFunc("/quiz/search/{substring}", qs.SearchFunc).Methods("GET")
	r.HandleFunc("/quiz/{id}", qs.GetFunc).Methods("GET")
	r.HandleFunc("/quiz/{id}", qs.UpdateFunc).Methods("PUT")
	r.HandleFunc("/quiz/{id}", qs.DeleteFunc).Methods("DELETE")
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) util.HTTPMessage {
	t.Helper()
	var msg util.HTTPMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg), rec.Body.String())
	return msg
}

func decodeQuizzes(t *testing.T, rec *httptest.ResponseRecorder) []quiz.Quiz {
	t.Helper()
	var quizzes []quiz.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quizzes), rec.Body.String())
	return quizzes
}

func seedQuiz(store *fake.Store, title string, addedAt time.Time, tags ...string) quiz.Quiz {
	q := quiz.Quiz{
		Id:        primitive.NewObjectID().Hex(),
		Title:     title,
		Author:    "A",
		Questions: []quiz.Question{},
		AddedAt:   addedAt,
		Tags:      tags,
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	store.Seed(q)
	return q
}

func TestCreateFunc(t *testing.T) {
	store := fake.NewStore()
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store.Now = func() time.Time { return stamp }

	rec := do(t, newRouter(store), "POST", "/quiz", validBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	msg := decodeMessage(t, rec)
	assert.Equal(t, "created", msg.Type)
	assert.Equal(t, "201", msg.Status)

	got, err := store.GetQuiz(context.Background(), msg.Message)
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Title)
	assert.Equal(t, stamp, got.AddedAt)
	assert.Equal(t, []string{"science"}, got.Tags)
}

func TestCreateFuncRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "not json", body: "hello"},
		{name: "missing fields", body: `{"title":"T1"}`},
		{name: "wrong types", body: `{"title":1,"author":"A","questions":[],"tags":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := fake.NewStore()
			rec := do(t, newRouter(store), "POST", "/quiz", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "badrequest", decodeMessage(t, rec).Type)
			assert.Zero(t, store.Len())
		})
	}
}

func TestCreateFuncRejectsOversizedBody(t *testing.T) {
	store := fake.NewStore()
	body := `{"title":"` + strings.Repeat("a", 2<<20) + `","author":"A","questions":[],"tags":[]}`

	rec := do(t, newRouter(store), "POST", "/quiz", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, store.Len())
}

func TestGetFunc(t *testing.T) {
	store := fake.NewStore()
	seeded := seedQuiz(store, "T1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "science")
	router := newRouter(store)

	t.Run("found", func(t *testing.T) {
		rec := do(t, router, "GET", "/quiz/"+seeded.Id, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var got quiz.Quiz
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, seeded, got)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Contains(t, raw, "added_at")
		assert.Contains(t, raw, "id")
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(t, router, "GET", "/quiz/"+primitive.NewObjectID().Hex(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "notfound", decodeMessage(t, rec).Type)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := do(t, router, "GET", "/quiz/xyz", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		msg := decodeMessage(t, rec)
		assert.Equal(t, "invalidid", msg.Type)
		assert.Equal(t, "invalid quiz id xyz", msg.Message)
	})
}

func TestUpdateFunc(t *testing.T) {
	store := fake.NewStore()
	seeded := seedQuiz(store, "old", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	stamp := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return stamp }
	router := newRouter(store)

	rec := do(t, router, "PUT", "/quiz/"+seeded.Id, validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "updated", decodeMessage(t, rec).Type)

	got, err := store.GetQuiz(context.Background(), seeded.Id)
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Title)
	assert.Equal(t, stamp, got.AddedAt)

	t.Run("missing id is a no-op", func(t *testing.T) {
		rec := do(t, router, "PUT", "/quiz/"+primitive.NewObjectID().Hex(), validBody)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := do(t, router, "PUT", "/quiz/xyz", validBody)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := do(t, router, "PUT", "/quiz/"+seeded.Id, `{"title":"T1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		got, err := store.GetQuiz(context.Background(), seeded.Id)
		require.NoError(t, err)
		assert.Equal(t, "T1", got.Title)
	})
}

func TestDeleteFunc(t *testing.T) {
	store := fake.NewStore()
	seeded := seedQuiz(store, "T1", time.Now())
	router := newRouter(store)

	rec := do(t, router, "DELETE", "/quiz/"+seeded.Id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deleted", decodeMessage(t, rec).Type)
	assert.Zero(t, store.Len())

	rec = do(t, router, "DELETE", "/quiz/"+seeded.Id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, "DELETE", "/quiz/xyz", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFunc(t *testing.T) {
	store := fake.NewStore()
	router := newRouter(store)

	rec := do(t, router, "GET", "/quiz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	seedQuiz(store, "one", time.Now())
	seedQuiz(store, "two", time.Now())

	rec = do(t, router, "GET", "/quiz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeQuizzes(t, rec), 2)
}

func TestListRecentFunc(t *testing.T) {
	store := fake.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		seedQuiz(store, "q", base.Add(time.Duration(i)*time.Hour))
	}

	rec := do(t, newRouter(store), "GET", "/quiz/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeQuizzes(t, rec)
	require.Len(t, got, quiz.RecentLimit)
	assert.Equal(t, base.Add(9*time.Hour), got[0].AddedAt)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].AddedAt.After(got[i-1].AddedAt))
	}
}

func TestSearchFunc(t *testing.T) {
	store := fake.NewStore()
	seedQuiz(store, "xabcy", time.Now())
	seedQuiz(store, "other", time.Now())
	router := newRouter(store)

	rec := do(t, router, "GET", "/quiz/search/ABC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeQuizzes(t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "xabcy", got[0].Title)

	rec = do(t, router, "GET", "/quiz/search/zzz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDeleteTaggedFunc(t *testing.T) {
	store := fake.NewStore()
	seedQuiz(store, "a", time.Now(), "funner")
	seedQuiz(store, "b", time.Now(), "funner")
	seedQuiz(store, "c", time.Now(), "funner", "science")
	seedQuiz(store, "d", time.Now())

	rec := do(t, newRouter(store), "DELETE", "/quiz/delete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decodeMessage(t, rec)
	assert.Equal(t, "deleted", msg.Type)
	assert.Equal(t, "deleted 2 quizzes", msg.Message)
	assert.Equal(t, 2, store.Len())
}

func TestStoreFailures(t *testing.T) {
	store := fake.NewStore()
	id := seedQuiz(store, "T1", time.Now()).Id
	router := newRouter(store)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		err    error
		status int
	}{
		{name: "get connection", method: "GET", target: "/quiz/" + id, err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
		{name: "get malformed", method: "GET", target: "/quiz/" + id, err: qberrors.NewMappingError("bad doc"), status: http.StatusInternalServerError},
		{name: "list", method: "GET", target: "/quiz", err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
		{name: "recent", method: "GET", target: "/quiz/recent", err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
		{name: "search", method: "GET", target: "/quiz/search/x", err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
		{name: "create", method: "POST", target: "/quiz", body: validBody, err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
		{name: "update", method: "PUT", target: "/quiz/" + id, body: validBody, err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
		{name: "delete", method: "DELETE", target: "/quiz/" + id, err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
		{name: "delete tagged", method: "DELETE", target: "/quiz/delete", err: qberrors.NewConnectionError("down"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.Err = tt.err
			defer func() { store.Err = nil }()

			rec := do(t, router, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			msg := decodeMessage(t, rec)
			assert.Equal(t, "internalerror", msg.Type)
			assert.NotContains(t, msg.Message, "down")
			assert.NotContains(t, msg.Message, "bad doc")
		})
	}
}

func TestErrorsNegotiatePlainText(t *testing.T) {
	req := httptest.NewRequest("GET", "/quiz/xyz", nil)
	req.Header.Set("Accept", "text/plain")
	rec := httptest.NewRecorder()

	newRouter(fake.NewStore()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "invalid quiz id xyz\n", rec.Body.String())
}
