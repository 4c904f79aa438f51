package quizservice

import (
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"

	"github.com/quizzbuzz/quizzbuzz/services/quizsvc/internal/quiz"
)

type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

type QuizServer struct {
	internalQuizService *quiz.QuizService
}

func NewQuizServer(store quiz.Store) QuizServer {
	return QuizServer{
		internalQuizService: quiz.NewQuizService(store),
	}
}

// routes is matched in order; literal paths come before /quiz/{id}.
func (qs QuizServer) routes() []route {
	s := qs.internalQuizService
	return []route{
		{http.MethodPost, "/quiz", s.CreateFunc},
		{http.MethodGet, "/quiz", s.ListFunc},
		{http.MethodGet, "/quiz/recent", s.ListRecentFunc},
		{http.MethodDelete, "/quiz/delete", s.DeleteTaggedFunc},
		{http.MethodGet, "/quiz/search/{substring}", s.SearchFunc},
		{http.MethodGet, "/quiz/{id}", s.GetFunc},
		{http.MethodPut, "/quiz/{id}", s.UpdateFunc},
		{http.MethodDelete, "/quiz/{id}", s.DeleteFunc},
	}
}

func (qs QuizServer) SetupRoutes(r *mux.Router) {
	for _, rt := range qs.routes() {
		r.HandleFunc(rt.path, rt.handler).Methods(rt.method)
	}
	glog.V(2).Infof("set up routes for quiz server")
}
