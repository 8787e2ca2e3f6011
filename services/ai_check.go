package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vnkhanh/engchi-backend/models"
)

type CheckType string

const CheckVocab CheckType = "vocab"

func ParseCheckType(s string) (CheckType, error) {
	switch CheckType(s) {
	case CheckVocab:
		return CheckVocab, nil
	}
	return "", fmt.Errorf("%w '%s'", models.ErrInvalidCheckType, s)
}

type VocabCheckPayload struct {
	WordPairs      []WordPair      `json:"wordPairs"`
	SourceLanguage models.Language `json:"sourceLanguage"`
}

type AICheckService struct {
	vocab *VocabService
}

func NewAICheckService(vocab *VocabService) *AICheckService {
	return &AICheckService{vocab: vocab}
}

// Run chạy tác vụ kiểm tra AI đơn giản theo checkType.
func (s *AICheckService) Run(ctx context.Context, checkType CheckType, payload json.RawMessage, apiKey APIKeySource) (any, error) {
	switch checkType {
	case CheckVocab:
		var p VocabCheckPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidPayload, err)
		}
		return s.vocab.Check(ctx, p.SourceLanguage, p.WordPairs, apiKey)
	}
	return nil, fmt.Errorf("%w '%s'", models.ErrInvalidCheckType, checkType)
}
