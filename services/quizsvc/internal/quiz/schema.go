package quiz

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	qberrors "github.com/quizzbuzz/quizzbuzz/pkg/errors"
)

// quizRequestSchema checks the shape of a QuizRequest body: required keys and
// JSON types only. Empty strings and arrays are accepted.
const quizRequestSchema = `{
	"type": "object",
	"required": ["title", "author", "questions", "tags"],
	"properties": {
		"title": {"type": "string"},
		"author": {"type": "string"},
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["question", "correct_answer", "incorrect_answers"],
				"properties": {
					"question": {"type": "string"},
					"correct_answer": {"type": "string"},
					"incorrect_answers": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"tags": {"type": "array", "items": {"type": "string"}}
	}
}`

var quizRequestValidator = mustCompileSchema(quizRequestSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(err)
	}
	return s
}

// DecodeQuizRequest validates body against the QuizRequest shape and decodes it.
// All failures are BadRequest errors whose message is safe to return to clients.
func DecodeQuizRequest(body []byte) (QuizRequest, error) {
	result, err := quizRequestValidator.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return QuizRequest{}, qberrors.NewBadRequest("invalid json body")
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			details[i] = e.String()
		}
		return QuizRequest{}, qberrors.NewBadRequest("invalid quiz: " + strings.Join(details, "; "))
	}

	var req QuizRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return QuizRequest{}, qberrors.NewBadRequest("invalid json body")
	}
	return req, nil
}
