package receipt

import (
	"testing"
	"time"

	"stockpot"
)

func TestPredictExpirations(t *testing.T) {
	today := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		item           stockpot.Item
		wantBought     string
		wantExpiration string
	}{
		{
			name:           "shelf life from the model",
			item:           stockpot.Item{Name: "milk", DateBought: "2026-08-20", ShelfLifeDays: 7},
			wantBought:     "2026-08-20",
			wantExpiration: "2026-08-27",
		},
		{
			name:           "missing date_bought defaults to today",
			item:           stockpot.Item{Name: "bread", ShelfLifeDays: 5},
			wantBought:     "2026-08-28",
			wantExpiration: "2026-09-02",
		},
		{
			name:           "freezer fallback",
			item:           stockpot.Item{Name: "peas", DateBought: "2026-08-28", StorageLocation: "F"},
			wantBought:     "2026-08-28",
			wantExpiration: "2026-11-26",
		},
		{
			name:           "refrigerator fallback",
			item:           stockpot.Item{Name: "yogurt", DateBought: "2026-08-28", StorageLocation: "R"},
			wantBought:     "2026-08-28",
			wantExpiration: "2026-09-04",
		},
		{
			name:           "no hints at all",
			item:           stockpot.Item{Name: "mystery"},
			wantBought:     "2026-08-28",
			wantExpiration: "2026-09-04",
		},
		{
			name:           "unparseable date_bought is replaced",
			item:           stockpot.Item{Name: "rice", DateBought: "yesterday", ShelfLifeDays: 30},
			wantBought:     "2026-08-28",
			wantExpiration: "2026-09-27",
		},
		{
			name:           "existing expiration is kept",
			item:           stockpot.Item{Name: "cheese", DateBought: "2026-08-01", EstimatedExpiration: "2026-10-01"},
			wantBought:     "2026-08-01",
			wantExpiration: "2026-10-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := PredictExpirations([]stockpot.Item{tt.item}, today)
			if len(out) != 1 {
				t.Fatalf("got %d items, want 1", len(out))
			}
			if out[0].DateBought != tt.wantBought {
				t.Errorf("DateBought = %q, want %q", out[0].DateBought, tt.wantBought)
			}
			if out[0].EstimatedExpiration != tt.wantExpiration {
				t.Errorf("EstimatedExpiration = %q, want %q", out[0].EstimatedExpiration, tt.wantExpiration)
			}
		})
	}
}

func TestPredictExpirationsDoesNotMutateInput(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	in := []stockpot.Item{{Name: "milk"}}

	PredictExpirations(in, today)
	if in[0].DateBought != "" || in[0].EstimatedExpiration != "" {
		t.Errorf("input was mutated: %+v", in[0])
	}
}
