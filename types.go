package stockpot

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across packages. The HTTP layer maps these to
// status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrExhausted  = errors.New("generation attempts exhausted")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Item is a single inventory entry owned by a user. Upstream data sources
// disagree on which optional fields are populated, so everything beyond
// name and user_uuid is best-effort.
type Item struct {
	ID                  int64   `json:"id,omitempty"`
	UserUUID            string  `json:"user_uuid,omitempty"`
	Name                string  `json:"name"`
	DateBought          string  `json:"date_bought,omitempty"` // YYYY-MM-DD
	Price               float64 `json:"price,omitempty"`
	ShelfLifeDays       int     `json:"shelf_life_days,omitempty"`
	EstimatedExpiration string  `json:"estimated_expiration,omitempty"` // YYYY-MM-DD
	ExpiryDate          string  `json:"expiry_date,omitempty"`          // YYYY-MM-DD
	StorageLocation     string  `json:"storage_location,omitempty"`     // "F", "R" or "S"
}

// Recipe is a recipe as stored and as returned to clients. Candidate recipes
// coming back from the model use the same shape but are untrusted until the
// validator accepts them.
type Recipe struct {
	ID          int64           `json:"id,omitempty"`
	UserUUID    string          `json:"user_uuid,omitempty"`
	Title       string          `json:"title"`
	Ingredients []string        `json:"ingredients"`
	Steps       []string        `json:"steps"`
	CookTime    string          `json:"cook_time"`
	Difficulty  string          `json:"difficulty"`
	Servings    int             `json:"servings"`
	URL         string          `json:"url,omitempty"`
	Metadata    *RecipeMetadata `json:"metadata,omitempty"`
}

// RecipeMetadata is derived server-side after validation. It is never taken
// from model output.
type RecipeMetadata struct {
	UsedIngredients []string      `json:"used_ingredients"`
	UsedExpiring    []string      `json:"used_expiring"`
	Stats           MetadataStats `json:"stats"`
}

type MetadataStats struct {
	IngredientUsage string `json:"ingredient_usage"` // e.g. "2/4"
	ExpiringUsage   string `json:"expiring_usage"`   // e.g. "1/2", or "N/A" when nothing is expiring
	EfficiencyScore int    `json:"efficiency_score"` // 0-100
}

// RecommendationRequest is the inbound payload for recipe recommendations.
// Field names match what the mobile client sends.
type RecommendationRequest struct {
	Inventory     []Item   `json:"inventory"`
	ExpiringItems []Item   `json:"expiringItems"`
	UserRecipes   []Recipe `json:"userRecipes"`
	Count         int      `json:"count"`
}

// Profile is a user profile row keyed by the auth provider's UUID.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}
