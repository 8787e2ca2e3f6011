package services

import (
	"github.com/samber/lo"

	"github.com/vnkhanh/engchi-backend/models"
)

// MissingItemIDs trả về các id có trong nội dung nhưng chưa có trong tiến độ, giữ thứ tự nội dung.
// Không bao giờ xoá id cũ.
func MissingItemIDs(contentIDs []string, items []models.ProgressItem) []string {
	have := lo.SliceToMap(items, func(it models.ProgressItem) (string, struct{}) {
		return it.ItemID, struct{}{}
	})
	missing := make([]string, 0)
	for _, id := range lo.Uniq(contentIDs) {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func newItems(ids []string, kind models.ItemKind) []models.ProgressItem {
	return lo.Map(ids, func(id string, _ int) models.ProgressItem {
		return models.ProgressItem{ItemID: id, Kind: kind}
	})
}
