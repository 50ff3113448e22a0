package recommend

import (
	"fmt"
	"math"
	"strings"

	"stockpot"
)

// AnnotateRecipe computes usage metadata for an accepted recipe. An inventory
// item counts as used when its name appears as a case-insensitive substring
// of any ingredient line; it counts as expiring-used when it is also in the
// expiring set. Idempotent: the same recipe and inventory always produce the
// same metadata.
func AnnotateRecipe(r *stockpot.Recipe, inventory, expiring []stockpot.Item) {
	lines := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		lines[i] = strings.ToLower(ing)
	}

	expiringNames := make(map[string]bool, len(expiring))
	for _, it := range expiring {
		expiringNames[strings.ToLower(it.Name)] = true
	}

	used := make([]string, 0)
	usedExpiring := make([]string, 0)
	for _, it := range inventory {
		name := strings.ToLower(it.Name)
		if !anyContains(lines, name) {
			continue
		}
		used = append(used, it.Name)
		if expiringNames[name] {
			usedExpiring = append(usedExpiring, it.Name)
		}
	}

	ingredientScore := 0.0
	if len(inventory) > 0 {
		ingredientScore = float64(len(used)) / float64(len(inventory))
	}
	expiringScore := 1.0 // nothing expiring means nothing was missed
	expiringUsage := "N/A"
	if len(expiring) > 0 {
		expiringScore = float64(len(usedExpiring)) / float64(len(expiring))
		expiringUsage = fmt.Sprintf("%d/%d", len(usedExpiring), len(expiring))
	}

	r.Metadata = &stockpot.RecipeMetadata{
		UsedIngredients: used,
		UsedExpiring:    usedExpiring,
		Stats: stockpot.MetadataStats{
			IngredientUsage: fmt.Sprintf("%d/%d", len(used), len(inventory)),
			ExpiringUsage:   expiringUsage,
			EfficiencyScore: int(math.Round((ingredientScore + expiringScore) / 2 * 100)),
		},
	}
}

func anyContains(lines []string, name string) bool {
	for _, line := range lines {
		if strings.Contains(line, name) {
			return true
		}
	}
	return false
}
