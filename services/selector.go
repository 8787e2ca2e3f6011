package services

import (
	"math/rand"

	"github.com/vnkhanh/engchi-backend/models"
)

// SelectLeastAttempted chọn ngẫu nhiên một item trong số các item có bộ đếm nhỏ nhất.
// ok=false khi danh sách rỗng.
func SelectLeastAttempted(items []models.ProgressItem, rng *rand.Rand) (models.ProgressItem, bool) {
	if len(items) == 0 {
		return models.ProgressItem{}, false
	}
	minCounter := items[0].Counter
	for _, it := range items[1:] {
		if it.Counter < minCounter {
			minCounter = it.Counter
		}
	}
	candidates := make([]models.ProgressItem, 0, len(items))
	for _, it := range items {
		if it.Counter == minCounter {
			candidates = append(candidates, it)
		}
	}
	return candidates[rng.Intn(len(candidates))], true
}

// liveItems bỏ qua các id không còn trong nội dung bài học (id cũ vẫn được giữ trong DB).
func liveItems(items []models.ProgressItem, contentIDs []string) []models.ProgressItem {
	present := make(map[string]bool, len(contentIDs))
	for _, id := range contentIDs {
		present[id] = true
	}
	live := make([]models.ProgressItem, 0, len(items))
	for _, it := range items {
		if present[it.ItemID] {
			live = append(live, it)
		}
	}
	return live
}
