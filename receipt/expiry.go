package receipt

import (
	"time"

	"stockpot"
)

const dateLayout = "2006-01-02"

// Fallback shelf lives in days by storage location when the model did not
// supply one. "F" freezer, "R" refrigerator, "S" shelf.
var defaultShelfLifeDays = map[string]int{
	"F": 90,
	"R": 7,
	"S": 30,
}

const fallbackShelfLifeDays = 7

// PredictExpirations fills in missing date_bought and estimated_expiration
// fields. date_bought defaults to today; the expiration is date_bought plus
// the item's shelf life, falling back to a per-storage-location default.
// The input slice is not modified.
func PredictExpirations(items []stockpot.Item, today time.Time) []stockpot.Item {
	out := make([]stockpot.Item, len(items))
	for i, it := range items {
		if it.DateBought == "" {
			it.DateBought = today.Format(dateLayout)
		}
		if it.EstimatedExpiration == "" {
			bought, err := time.Parse(dateLayout, it.DateBought)
			if err != nil {
				bought = today
				it.DateBought = today.Format(dateLayout)
			}
			it.EstimatedExpiration = bought.AddDate(0, 0, shelfLifeDays(it)).Format(dateLayout)
		}
		out[i] = it
	}
	return out
}

func shelfLifeDays(it stockpot.Item) int {
	if it.ShelfLifeDays > 0 {
		return it.ShelfLifeDays
	}
	if days, ok := defaultShelfLifeDays[it.StorageLocation]; ok {
		return days
	}
	return fallbackShelfLifeDays
}
