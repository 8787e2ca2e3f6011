package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/vnkhanh/engchi-backend/models"
)

var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
}

// GeminiGrader gọi Gemini với API key của từng request.
type GeminiGrader struct {
	model string
	log   *logrus.Logger
}

func NewGeminiGrader(model string, log *logrus.Logger) *GeminiGrader {
	return &GeminiGrader{model: model, log: log}
}

func (g *GeminiGrader) generate(ctx context.Context, apiKey, prompt string, asJSON bool) (string, error) {
	if apiKey == "" {
		return "", models.ErrGraderNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("không thể tạo Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SafetySettings = safetySettings
	if asJSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("lỗi Gemini xử lý: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", models.ErrGraderEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", models.ErrGraderEmptyResponse
	}
	return text, nil
}

func (g *GeminiGrader) GradeTranslation(ctx context.Context, apiKey string, task TranslationTask) (*TranslationGrade, error) {
	raw, err := g.generate(ctx, apiKey, buildTranslationPrompt(task), true)
	if err != nil {
		return nil, err
	}
	grade, err := parseTranslationGrade(raw)
	if err != nil {
		g.log.WithError(err).WithField("raw", raw).Warn("gemini trả về kết quả chấm dịch không hợp lệ")
		return nil, err
	}
	return grade, nil
}

func (g *GeminiGrader) CheckVocab(ctx context.Context, apiKey string, lang models.Language, pairs []WordPair) ([]bool, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	raw, err := g.generate(ctx, apiKey, buildVocabPrompt(lang, pairs), false)
	if err != nil {
		return nil, err
	}
	verdicts := parseVocabVerdicts(raw, len(pairs))
	g.log.WithFields(logrus.Fields{"pairs": len(pairs), "lines": strings.Count(raw, "\n") + 1}).Debug("gemini vocab check")
	return verdicts, nil
}
