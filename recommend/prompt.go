// Package recommend contains the recipe-recommendation pipeline: prompt
// construction, response validation and the bounded retry engine.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"stockpot"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// SkillForHistory derives the skill level from how many recipes the user has
// saved. Deterministic, no randomness.
func SkillForHistory(savedRecipes int) SkillLevel {
	switch {
	case savedRecipes > 5:
		return SkillAdvanced
	case savedRecipes > 0:
		return SkillIntermediate
	default:
		return SkillBeginner
	}
}

type skillProfile struct {
	techniques string
	equipment  string
	detail     string
}

var skillProfiles = map[SkillLevel]skillProfile{
	SkillBeginner: {
		techniques: "basic techniques only: chopping, boiling, pan-frying, baking",
		equipment:  "common kitchen equipment: one pot, one pan, oven, cutting board",
		detail:     "very detailed instructions, explain every step including prep work",
	},
	SkillIntermediate: {
		techniques: "intermediate techniques: sauteing, roasting, braising, simple sauces",
		equipment:  "standard equipment plus blender, whisk, multiple pans",
		detail:     "moderately detailed instructions, assume familiarity with basics",
	},
	SkillAdvanced: {
		techniques: "advanced techniques welcome: emulsions, reductions, sous-vide, pastry work",
		equipment:  "full kitchen equipment assumed",
		detail:     "concise instructions, technique names without explanation",
	},
}

// BuildPrompt renders the generation request for the external model. Pure
// function of its four inputs: inventory and expiring names are listed
// alphabetically, the skill profile comes from a fixed lookup table, and the
// JSON contract is embedded literally so the model mimics it exactly.
func BuildPrompt(inventory, expiring []stockpot.Item, skill SkillLevel, count int) string {
	profile, ok := skillProfiles[skill]
	if !ok {
		profile = skillProfiles[SkillBeginner]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a recipe assistant. Generate exactly %d recipes using the ingredients below.\n\n", count)

	b.WriteString("AVAILABLE INGREDIENTS:\n")
	for _, name := range sortedNames(inventory) {
		fmt.Fprintf(&b, "- %s\n", name)
	}

	if len(expiring) > 0 {
		b.WriteString("\nEXPIRING SOON (must be used):\n")
		for _, name := range sortedNames(expiring) {
			fmt.Fprintf(&b, "- %s (mandatory)\n", name)
		}
	}

	b.WriteString("\nCOOK SKILL LEVEL: " + string(skill) + "\n")
	fmt.Fprintf(&b, "- Techniques: %s\n", profile.techniques)
	fmt.Fprintf(&b, "- Equipment: %s\n", profile.equipment)
	fmt.Fprintf(&b, "- Instruction detail: %s\n", profile.detail)

	b.WriteString(`
REQUIREMENTS:
- Each recipe must use at least 3 ingredients from the available list.
- Expiring ingredients must be incorporated into the recipes.
- Each recipe serves 2-4 people.
- Every ingredient line must carry an exact quantity, a standard unit, and a descriptive qualifier (e.g. "2 cups fresh spinach, chopped").
- Steps must be numbered starting with "1.", begin with prep work, and end with a completion indicator (e.g. "until golden brown").
- Each step must be a full sentence of at least 5 words.

Return ONLY one valid JSON object, no markdown, no commentary, matching this shape exactly:
{
  "recipes": [
    {
      "title": "Garlic Butter Pasta",
      "cook_time": "25 minutes",
      "difficulty": "easy",
      "servings": 2,
      "ingredients": [
        "8 oz dried spaghetti",
        "3 cloves fresh garlic, minced",
        "2 tbsp unsalted butter"
      ],
      "steps": [
        "1. Mince the garlic and measure out the butter before starting.",
        "2. Boil the spaghetti in salted water until al dente.",
        "3. Melt the butter, add garlic, and toss with pasta until fully coated."
      ]
    }
  ]
}
`)
	return b.String()
}

func sortedNames(items []stockpot.Item) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	sort.Strings(names)
	return names
}
