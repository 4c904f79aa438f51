package quiz

import (
	"time"
)

// RecentLimit is the number of quizzes returned by the recent listing.
const RecentLimit = 8

// FixedDeleteTag is matched against the whole tags array by DeleteTaggedQuizzes:
// only quizzes whose tags are exactly ["funner"] are removed.
const FixedDeleteTag = "funner"

type Question struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type Quiz struct {
	Id        string     `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Questions []Question `json:"questions"`
	AddedAt   time.Time  `json:"added_at"`
	Tags      []string   `json:"tags"`
}

// QuizRequest is the client supplied part of a quiz. The id and added_at are
// always assigned server side.
type QuizRequest struct {
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Questions []Question `json:"questions"`
	Tags      []string   `json:"tags"`
}
