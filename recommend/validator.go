package recommend

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"stockpot"
)

// Result is the outcome of a validation check. Validation never returns an
// error: malformed input, including undecodable JSON, is reported through
// the rejection reason so the engine can treat it as one more failed attempt.
type Result struct {
	OK     bool
	Reason string
}

func accept() Result { return Result{OK: true} }

func reject(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Unit vocabulary an ingredient line must use. Volume, weight and
// whole-piece measures; size words count as whole-piece units ("2 large
// eggs").
var units = map[string]bool{
	// volume
	"cup": true, "cups": true,
	"tbsp": true, "tablespoon": true, "tablespoons": true,
	"tsp": true, "teaspoon": true, "teaspoons": true,
	"ml": true, "milliliter": true, "milliliters": true,
	"l": true, "liter": true, "liters": true,
	"quart": true, "quarts": true, "pint": true, "pints": true,
	"gallon": true, "gallons": true,
	"oz": true, "ounce": true, "ounces": true,
	// weight
	"g": true, "gram": true, "grams": true,
	"kg": true, "kilogram": true, "kilograms": true,
	"lb": true, "lbs": true, "pound": true, "pounds": true,
	// whole pieces
	"clove": true, "cloves": true, "slice": true, "slices": true,
	"piece": true, "pieces": true, "can": true, "cans": true,
	"bunch": true, "bunches": true, "head": true, "heads": true,
	"stalk": true, "stalks": true, "pinch": true, "pinches": true,
	"dash": true, "whole": true,
	"large": true, "medium": true, "small": true,
}

// Descriptive adjectives stripped when extracting the core ingredient name.
var descriptors = map[string]bool{
	"fresh": true, "ripe": true, "frozen": true,
	"dried": true, "chopped": true, "diced": true,
}

var difficulties = map[string]bool{
	"easy": true, "medium": true, "hard": true,
}

// Validator checks candidate recipes against the caller's inventory. The
// name lookup is built once per request; nothing here survives the request.
type Validator struct {
	inventory      map[string]stockpot.Item // lowercase name -> item
	expiring       map[string]stockpot.Item
	inventoryOrder []string // lowercase names in insertion order, for tie-breaks
	expiringOrder  []string
}

func NewValidator(inventory, expiring []stockpot.Item) *Validator {
	v := &Validator{
		inventory: make(map[string]stockpot.Item, len(inventory)),
		expiring:  make(map[string]stockpot.Item, len(expiring)),
	}
	for _, it := range inventory {
		key := strings.ToLower(it.Name)
		if _, seen := v.inventory[key]; !seen {
			v.inventory[key] = it
			v.inventoryOrder = append(v.inventoryOrder, key)
		}
	}
	for _, it := range expiring {
		key := strings.ToLower(it.Name)
		if _, seen := v.expiring[key]; !seen {
			v.expiring[key] = it
			v.expiringOrder = append(v.expiringOrder, key)
		}
	}
	return v
}

// ValidateIngredient checks that a free-text ingredient line carries a
// quantity, a known unit, and a non-empty name once measures and descriptors
// are stripped.
func (v *Validator) ValidateIngredient(text string) Result {
	tokens := tokenize(text)

	hasQuantity := false
	for _, tok := range tokens {
		if startsWithDigit(tok) {
			hasQuantity = true
			break
		}
	}
	if !hasQuantity {
		return reject("ingredient %q missing quantity", text)
	}

	hasUnit := false
	for _, tok := range tokens {
		if units[tok] {
			hasUnit = true
			break
		}
	}
	if !hasUnit {
		return reject("ingredient %q missing unit", text)
	}

	if CoreIngredientName(text) == "" {
		return reject("ingredient %q missing ingredient name", text)
	}
	return accept()
}

// ValidateStep checks the numbering prefix and a minimum word count. index
// is zero-based; the step text must begin with "1." for index 0 and so on.
func (v *Validator) ValidateStep(text string, index int) Result {
	prefix := fmt.Sprintf("%d.", index+1)
	if !strings.HasPrefix(strings.TrimSpace(text), prefix) {
		return reject("step %d must start with %q", index+1, prefix)
	}
	if len(strings.Fields(text)) < 5 {
		return reject("step %d too short, needs at least 5 words", index+1)
	}
	return accept()
}

// ValidateRecipe runs the full structural and domain checks over one
// candidate recipe.
func (v *Validator) ValidateRecipe(r stockpot.Recipe) Result {
	switch {
	case r.Title == "":
		return reject("missing required field: title")
	case r.CookTime == "":
		return reject("missing required field: cook_time")
	case r.Difficulty == "":
		return reject("missing required field: difficulty")
	case r.Ingredients == nil:
		return reject("missing required field: ingredients")
	case r.Steps == nil:
		return reject("missing required field: steps")
	case r.Servings <= 0:
		return reject("missing required field: servings")
	}

	if !difficulties[strings.ToLower(r.Difficulty)] {
		return reject("difficulty %q not one of easy, medium, hard", r.Difficulty)
	}

	if len(r.Ingredients) < 3 {
		return reject("only %d ingredients, need at least 3", len(r.Ingredients))
	}
	for _, ing := range r.Ingredients {
		if res := v.ValidateIngredient(ing); !res.OK {
			return res
		}
	}

	matched, expiringMatched := v.matchIngredients(r.Ingredients)
	if len(matched) < 3 {
		return reject("recipe uses only %d inventory ingredients, need at least 3", len(matched))
	}
	if len(v.expiring) > 0 && len(expiringMatched) == 0 {
		return reject("recipe uses no expiring ingredients")
	}

	if len(r.Steps) < 3 {
		return reject("only %d steps, need at least 3", len(r.Steps))
	}
	for i, step := range r.Steps {
		if res := v.ValidateStep(step, i); !res.OK {
			return res
		}
	}

	return accept()
}

// ValidateResponse checks the top-level contract: a "recipes" list of
// exactly expectedCount entries, each passing ValidateRecipe. Validation
// short-circuits on the first failing recipe.
func (v *Validator) ValidateResponse(data []byte, expectedCount int) Result {
	var wrapper struct {
		Recipes []stockpot.Recipe `json:"recipes"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return reject("response is not the expected JSON shape: %v", err)
	}
	if wrapper.Recipes == nil {
		return reject("response missing recipes list")
	}
	if len(wrapper.Recipes) != expectedCount {
		return reject("expected %d recipes, got %d", expectedCount, len(wrapper.Recipes))
	}
	for i, r := range wrapper.Recipes {
		if res := v.ValidateRecipe(r); !res.OK {
			return reject("recipe %d (%q): %s", i+1, r.Title, res.Reason)
		}
	}
	return accept()
}

// matchIngredients maps each ingredient's core name onto the inventory and
// expiring sets. Exact (case-insensitive) match wins over substring match,
// and on substring ties the first inventory entry in insertion order wins.
// Returned names are distinct, in first-match order.
func (v *Validator) matchIngredients(ingredients []string) (matched, expiringMatched []string) {
	seen := map[string]bool{}
	seenExpiring := map[string]bool{}
	for _, ing := range ingredients {
		core := CoreIngredientName(ing)
		if core == "" {
			continue
		}
		if name, ok := matchName(core, v.inventory, v.inventoryOrder); ok && !seen[name] {
			seen[name] = true
			matched = append(matched, name)
		}
		if name, ok := matchName(core, v.expiring, v.expiringOrder); ok && !seenExpiring[name] {
			seenExpiring[name] = true
			expiringMatched = append(expiringMatched, name)
		}
	}
	return matched, expiringMatched
}

func matchName(core string, index map[string]stockpot.Item, order []string) (string, bool) {
	if it, ok := index[core]; ok {
		return it.Name, true
	}
	for _, key := range order {
		if strings.Contains(core, key) || strings.Contains(key, core) {
			return index[key].Name, true
		}
	}
	return "", false
}

// CoreIngredientName strips quantity, unit and descriptor tokens from an
// ingredient line, leaving the lowercased name used for inventory matching.
func CoreIngredientName(text string) string {
	var kept []string
	for _, tok := range tokenize(text) {
		if tok == "" || startsWithDigit(tok) || units[tok] || descriptors[tok] {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.Trim(f, "()[],.;:"))
	}
	return tokens
}

func startsWithDigit(tok string) bool {
	for _, r := range tok {
		return unicode.IsDigit(r)
	}
	return false
}
