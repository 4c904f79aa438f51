package quiz

import (
	"fmt"
	"io"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"

	qberrors "github.com/quizzbuzz/quizzbuzz/pkg/errors"
	"github.com/quizzbuzz/quizzbuzz/pkg/util"
)

const maxBodyBytes = 1 << 20

type QuizService struct {
	store Store
}

func NewQuizService(store Store) *QuizService {
	return &QuizService{
		store: store,
	}
}

func returnStoreError(w http.ResponseWriter, r *http.Request, err error, quizId string, action string) {
	switch {
	case qberrors.IsInvalidIdentifier(err):
		util.ReturnHTTPError(w, r, err, fmt.Sprintf("invalid quiz id %s", quizId))
	case qberrors.IsNotFound(err):
		util.ReturnHTTPError(w, r, err, fmt.Sprintf("quiz %s not found", quizId))
	case qberrors.IsMappingError(err):
		util.ReturnHTTPError(w, r, err, "stored quiz is malformed")
	default:
		util.ReturnHTTPError(w, r, err, "error "+action)
	}
}

func readQuizRequest(w http.ResponseWriter, r *http.Request) (QuizRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return QuizRequest{}, qberrors.NewBadRequest("invalid json body")
	}
	return DecodeQuizRequest(body)
}

func (qs QuizService) GetFunc(w http.ResponseWriter, r *http.Request) {
	quizId := mux.Vars(r)["id"]

	quiz, err := qs.store.GetQuiz(r.Context(), quizId)
	if err != nil {
		glog.Errorf("error while retrieving quiz %s: %s", quizId, err)
		returnStoreError(w, r, err, quizId, "retrieving quiz "+quizId)
		return
	}

	util.ReturnHTTPContent(w, r, http.StatusOK, quiz)
	glog.V(2).Infof("retrieved quiz %s", quizId)
}

func (qs QuizService) ListFunc(w http.ResponseWriter, r *http.Request) {
	quizzes, err := qs.store.ListQuizzes(r.Context())
	if err != nil {
		glog.Errorf("error while listing all quizzes: %s", err)
		returnStoreError(w, r, err, "", "listing all quizzes")
		return
	}

	util.ReturnHTTPContent(w, r, http.StatusOK, quizzes)
	glog.V(2).Infof("retrieved list of all quizzes")
}

func (qs QuizService) ListRecentFunc(w http.ResponseWriter, r *http.Request) {
	quizzes, err := qs.store.ListRecentQuizzes(r.Context())
	if err != nil {
		glog.Errorf("error while listing recent quizzes: %s", err)
		returnStoreError(w, r, err, "", "listing recent quizzes")
		return
	}

	util.ReturnHTTPContent(w, r, http.StatusOK, quizzes)
	glog.V(2).Infof("retrieved %d recent quizzes", len(quizzes))
}

func (qs QuizService) SearchFunc(w http.ResponseWriter, r *http.Request) {
	substring := mux.Vars(r)["substring"]

	quizzes, err := qs.store.SearchQuizzes(r.Context(), substring)
	if err != nil {
		glog.Errorf("error while searching quizzes for %q: %s", substring, err)
		returnStoreError(w, r, err, "", "searching quizzes")
		return
	}

	util.ReturnHTTPContent(w, r, http.StatusOK, quizzes)
	glog.V(2).Infof("search for %q matched %d quizzes", substring, len(quizzes))
}

func (qs QuizService) CreateFunc(w http.ResponseWriter, r *http.Request) {
	req, err := readQuizRequest(w, r)
	if err != nil {
		util.ReturnHTTPError(w, r, err, err.Error())
		return
	}

	quizId, err := qs.store.CreateQuiz(r.Context(), req)
	if err != nil {
		glog.Errorf("error creating quiz: %s", err)
		returnStoreError(w, r, err, "", "creating quiz")
		return
	}

	util.ReturnHTTPMessage(w, r, http.StatusCreated, "created", quizId)
	glog.V(4).Infof("Created quiz %s", quizId)
}

func (qs QuizService) UpdateFunc(w http.ResponseWriter, r *http.Request) {
	quizId := mux.Vars(r)["id"]

	req, err := readQuizRequest(w, r)
	if err != nil {
		util.ReturnHTTPError(w, r, err, err.Error())
		return
	}

	if err := qs.store.UpdateQuiz(r.Context(), quizId, req); err != nil {
		glog.Errorf("error updating quiz %s: %s", quizId, err)
		returnStoreError(w, r, err, quizId, "attempting to update")
		return
	}

	util.ReturnHTTPMessage(w, r, http.StatusOK, "updated", "")
	glog.V(4).Infof("Updated quiz %s", quizId)
}

func (qs QuizService) DeleteFunc(w http.ResponseWriter, r *http.Request) {
	quizId := mux.Vars(r)["id"]

	if err := qs.store.DeleteQuiz(r.Context(), quizId); err != nil {
		glog.Errorf("error deleting quiz %s: %s", quizId, err)
		returnStoreError(w, r, err, quizId, "deleting quiz")
		return
	}

	util.ReturnHTTPMessage(w, r, http.StatusOK, "deleted", "quiz deleted")
	glog.V(4).Infof("deleted quiz: %s", quizId)
}

func (qs QuizService) DeleteTaggedFunc(w http.ResponseWriter, r *http.Request) {
	deleted, err := qs.store.DeleteTaggedQuizzes(r.Context())
	if err != nil {
		glog.Errorf("error deleting quizzes tagged %s: %s", FixedDeleteTag, err)
		returnStoreError(w, r, err, "", "deleting quizzes")
		return
	}

	util.ReturnHTTPMessage(w, r, http.StatusOK, "deleted", fmt.Sprintf("deleted %d quizzes", deleted))
	glog.V(4).Infof("deleted %d quizzes tagged %s", deleted, FixedDeleteTag)
}
