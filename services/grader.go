package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vnkhanh/engchi-backend/models"
)

// APIKeySource trả về API key đã giải mã của người dùng hiện tại.
// Chỉ gọi khi thật sự cần gọi AI, không lưu lại kết quả.
type APIKeySource func() (string, error)

type WordPair struct {
	SourceWord string `json:"sourceWord" binding:"required"`
	UserInput  string `json:"userInput"`
}

type TranslationTask struct {
	Prompt     string
	Reference  string
	UserAnswer string
}

type TranslationGrade struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Grader chấm các câu trả lời dạng tự do bằng dịch vụ AI bên ngoài.
type Grader interface {
	GradeTranslation(ctx context.Context, apiKey string, task TranslationTask) (*TranslationGrade, error)
	CheckVocab(ctx context.Context, apiKey string, lang models.Language, pairs []WordPair) ([]bool, error)
}

var languageNames = map[models.Language]string{
	models.LanguageEnglish: "tiếng Anh",
	models.LanguageChinese: "tiếng Trung",
}

func buildVocabPrompt(lang models.Language, pairs []WordPair) string {
	name, ok := languageNames[lang]
	if !ok {
		name = "ngoại ngữ"
	}
	var b strings.Builder
	for i, p := range pairs {
		fmt.Fprintf(&b, "%d. Từ %s '%s' có một trong các nghĩa tiếng Việt là '%s' không?\n", i+1, name, p.SourceWord, p.UserInput)
	}
	b.WriteString("\nTrả lời mỗi câu trên một dòng riêng theo định dạng: \"Số. đúng\" hoặc \"Số. sai\". Không giải thích thêm.")
	return b.String()
}

var verdictLine = regexp.MustCompile(`^\s*(\d+)\s*[.):]\s*(.*)$`)

func isCorrectVerdict(answer string) bool {
	answer = strings.ToLower(answer)
	return strings.Contains(answer, "đúng") && !strings.Contains(answer, "không đúng")
}

// parseVocabVerdicts đọc các dòng "N. đúng/sai". Câu nào không có dòng tương ứng thì tính là sai.
// Nếu model bỏ số thứ tự mà trả đúng n dòng thì đọc theo vị trí.
func parseVocabVerdicts(text string, n int) []bool {
	verdicts := make([]bool, n)
	var plain []string
	numbered := false
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := verdictLine.FindStringSubmatch(line)
		if m == nil {
			plain = append(plain, line)
			continue
		}
		numbered = true
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > n {
			continue
		}
		verdicts[idx-1] = isCorrectVerdict(m[2])
	}
	if !numbered && len(plain) == n {
		for i, line := range plain {
			verdicts[i] = isCorrectVerdict(line)
		}
	}
	return verdicts
}

func buildTranslationPrompt(task TranslationTask) string {
	return fmt.Sprintf(`Bạn là giám khảo chấm bài dịch nghiêm khắc. Hãy đánh giá bản dịch của người học.

- Câu gốc: "%s"
- Bản dịch của người học: "%s"
- Bản dịch mẫu tham khảo: "%s"

Thang điểm 100: độ chính xác ngữ nghĩa (40), văn phong và độ trôi chảy (25), chính tả và ngữ pháp (15), mức độ hoàn chỉnh (10), trình bày (10). Điểm không cần tròn.

Nhận xét viết bằng HTML gồm ba phần, mỗi phần mở đầu bằng thẻ <h2>:
1. Đánh giá theo từng tiêu chí (dùng <ul><li>, không ghi điểm thành phần).
2. Gợi ý cải thiện cụ thể.
3. Trích lại các chỗ dịch sai, bôi đậm bằng <strong> và giải thích ngắn trong <p>.

Chỉ trả về một đối tượng JSON duy nhất:
{"score": <số 0-100>, "feedback": "<chuỗi HTML>"}`, task.Prompt, task.UserAnswer, task.Reference)
}

// cleanJSON bỏ khối ```json ... ``` mà model đôi khi bọc quanh kết quả
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func parseTranslationGrade(raw string) (*TranslationGrade, error) {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return nil, models.ErrGraderEmptyResponse
	}
	var grade TranslationGrade
	if err := json.Unmarshal([]byte(cleaned), &grade); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGraderEmptyResponse, err)
	}
	if grade.Score < 0 || grade.Score > 100 {
		return nil, fmt.Errorf("%w: score %v out of range", models.ErrGraderEmptyResponse, grade.Score)
	}
	return &grade, nil
}
