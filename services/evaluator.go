package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/vnkhanh/engchi-backend/models"
)

// Answer là câu trả lời cho một câu hỏi: danh sách id lựa chọn hoặc một chuỗi điền từ.
type Answer []string

func (a *Answer) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Answer{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("answer must be a string or an array of strings: %w", err)
	}
	*a = many
	return nil
}

type QuestionResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
}

// GradeQuestion chấm câu hỏi có cấu trúc, không cần gọi AI.
func GradeQuestion(q models.Question, answer Answer) QuestionResult {
	switch q.QType {
	case models.QuestionSingleChoice:
		correct, _ := lo.Find(q.Options, func(o models.Option) bool { return o.IsCorrect })
		return QuestionResult{
			IsCorrect:     len(answer) == 1 && correct.ID != "" && answer[0] == correct.ID,
			CorrectAnswer: correct.Text,
		}

	case models.QuestionMultiChoice:
		correct := lo.Filter(q.Options, func(o models.Option, _ int) bool { return o.IsCorrect })
		correctIDs := lo.Map(correct, func(o models.Option, _ int) string { return o.ID })
		selected := lo.Uniq([]string(answer))
		return QuestionResult{
			IsCorrect:     len(selected) == len(correctIDs) && lo.Every(correctIDs, selected),
			CorrectAnswer: strings.Join(lo.Map(correct, func(o models.Option, _ int) string { return o.Text }), ", "),
		}

	case models.QuestionFillInBlank:
		given := ""
		if len(answer) > 0 {
			given = strings.TrimSpace(answer[0])
		}
		ok := given != "" && lo.ContainsBy(q.Answers, func(accepted string) bool {
			return strings.EqualFold(strings.TrimSpace(accepted), given)
		})
		return QuestionResult{IsCorrect: ok, CorrectAnswer: strings.Join(q.Answers, " / ")}
	}
	return QuestionResult{}
}

// GradeQuestions chấm các câu có trong answers; câu không được trả lời tính là sai.
func GradeQuestions(questions []models.Question, answers map[string]Answer) map[string]QuestionResult {
	results := make(map[string]QuestionResult, len(questions))
	for _, q := range questions {
		results[q.ID] = GradeQuestion(q, answers[q.ID])
	}
	return results
}
