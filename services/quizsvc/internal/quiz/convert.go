package quiz

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	qberrors "github.com/quizzbuzz/quizzbuzz/pkg/errors"
)

const (
	fieldId        = "_id"
	fieldTitle     = "title"
	fieldAuthor    = "author"
	fieldQuestions = "questions"
	fieldAddedAt   = "added_at"
	fieldTags      = "tags"

	fieldQuestion         = "question"
	fieldCorrectAnswer    = "correct_answer"
	fieldIncorrectAnswers = "incorrect_answers"
)

// NewQuizDocument builds the stored representation of req. The _id is left out so
// the same document serves inserts (after NewQuizDocumentWithId) and replacements.
func NewQuizDocument(req QuizRequest, addedAt time.Time) bson.D {
	questions := make(bson.A, len(req.Questions))
	for i, question := range req.Questions {
		questions[i] = NewQuestionDocument(question)
	}
	return bson.D{
		{Key: fieldTitle, Value: req.Title},
		{Key: fieldAuthor, Value: req.Author},
		{Key: fieldQuestions, Value: questions},
		{Key: fieldAddedAt, Value: primitive.NewDateTimeFromTime(addedAt)},
		{Key: fieldTags, Value: stringArray(req.Tags)},
	}
}

func NewQuizDocumentWithId(id primitive.ObjectID, req QuizRequest, addedAt time.Time) bson.D {
	return append(bson.D{{Key: fieldId, Value: id}}, NewQuizDocument(req, addedAt)...)
}

func NewQuestionDocument(question Question) bson.D {
	return bson.D{
		{Key: fieldQuestion, Value: question.Question},
		{Key: fieldCorrectAnswer, Value: question.CorrectAnswer},
		{Key: fieldIncorrectAnswers, Value: stringArray(question.IncorrectAnswers)},
	}
}

// stringArray keeps nil slices from being stored as BSON null.
func stringArray(values []string) bson.A {
	arr := make(bson.A, len(values))
	for i, v := range values {
		arr[i] = v
	}
	return arr
}

// NewQuizFromDocument maps a stored document onto a Quiz. Every field is required;
// a missing or mistyped field is a MappingError, never a default.
func NewQuizFromDocument(doc bson.Raw) (Quiz, error) {
	idValue, err := lookup(doc, fieldId)
	if err != nil {
		return Quiz{}, err
	}
	id, ok := idValue.ObjectIDOK()
	if !ok {
		return Quiz{}, wrongType(fieldId, "objectId", idValue)
	}

	title, err := lookupString(doc, fieldTitle)
	if err != nil {
		return Quiz{}, err
	}
	author, err := lookupString(doc, fieldAuthor)
	if err != nil {
		return Quiz{}, err
	}

	questionValues, err := lookupArray(doc, fieldQuestions)
	if err != nil {
		return Quiz{}, err
	}
	questions := make([]Question, len(questionValues))
	for i, v := range questionValues {
		questionDoc, ok := v.DocumentOK()
		if !ok {
			return Quiz{}, wrongType(fmt.Sprintf("%s.%d", fieldQuestions, i), "document", v)
		}
		if questions[i], err = NewQuestionFromDocument(questionDoc); err != nil {
			return Quiz{}, err
		}
	}

	addedAtValue, err := lookup(doc, fieldAddedAt)
	if err != nil {
		return Quiz{}, err
	}
	addedAt, ok := addedAtValue.DateTimeOK()
	if !ok {
		return Quiz{}, wrongType(fieldAddedAt, "date", addedAtValue)
	}

	tags, err := lookupStrings(doc, fieldTags)
	if err != nil {
		return Quiz{}, err
	}

	return Quiz{
		Id:        id.Hex(),
		Title:     title,
		Author:    author,
		Questions: questions,
		AddedAt:   primitive.DateTime(addedAt).Time().UTC(),
		Tags:      tags,
	}, nil
}

func NewQuestionFromDocument(doc bson.Raw) (Question, error) {
	question, err := lookupString(doc, fieldQuestion)
	if err != nil {
		return Question{}, err
	}
	correct, err := lookupString(doc, fieldCorrectAnswer)
	if err != nil {
		return Question{}, err
	}
	incorrect, err := lookupStrings(doc, fieldIncorrectAnswers)
	if err != nil {
		return Question{}, err
	}
	return Question{
		Question:         question,
		CorrectAnswer:    correct,
		IncorrectAnswers: incorrect,
	}, nil
}

func lookup(doc bson.Raw, key string) (bson.RawValue, error) {
	v, err := doc.LookupErr(key)
	if err != nil {
		return bson.RawValue{}, qberrors.NewMappingError(fmt.Sprintf("field %q missing", key))
	}
	return v, nil
}

func lookupString(doc bson.Raw, key string) (string, error) {
	v, err := lookup(doc, key)
	if err != nil {
		return "", err
	}
	s, ok := v.StringValueOK()
	if !ok {
		return "", wrongType(key, "string", v)
	}
	return s, nil
}

func lookupArray(doc bson.Raw, key string) ([]bson.RawValue, error) {
	v, err := lookup(doc, key)
	if err != nil {
		return nil, err
	}
	arr, ok := v.ArrayOK()
	if !ok {
		return nil, wrongType(key, "array", v)
	}
	values, err := arr.Values()
	if err != nil {
		return nil, qberrors.NewMappingError(fmt.Sprintf("field %q: %s", key, err))
	}
	return values, nil
}

func lookupStrings(doc bson.Raw, key string) ([]string, error) {
	values, err := lookupArray(doc, key)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.StringValueOK()
		if !ok {
			return nil, wrongType(fmt.Sprintf("%s.%d", key, i), "string", v)
		}
		out[i] = s
	}
	return out, nil
}

func wrongType(key string, want string, got bson.RawValue) error {
	return qberrors.NewMappingError(fmt.Sprintf("field %q: expected %s, got %s", key, want, got.Type))
}
