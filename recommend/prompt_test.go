package recommend

import (
	"strings"
	"testing"

	"stockpot"
)

func TestSkillForHistory(t *testing.T) {
	tests := []struct {
		saved int
		want  SkillLevel
	}{
		{0, SkillBeginner},
		{1, SkillIntermediate},
		{5, SkillIntermediate},
		{6, SkillAdvanced},
		{20, SkillAdvanced},
	}
	for _, tt := range tests {
		if got := SkillForHistory(tt.saved); got != tt.want {
			t.Errorf("SkillForHistory(%d) = %s, want %s", tt.saved, got, tt.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	inventory := []stockpot.Item{
		{Name: "rice"},
		{Name: "broccoli"},
		{Name: "chicken breast"},
	}
	expiring := []stockpot.Item{{Name: "broccoli"}}

	prompt := BuildPrompt(inventory, expiring, SkillIntermediate, 3)

	// Inventory names listed alphabetically.
	iBroccoli := strings.Index(prompt, "- broccoli")
	iChicken := strings.Index(prompt, "- chicken breast")
	iRice := strings.Index(prompt, "- rice")
	if iBroccoli < 0 || iChicken < 0 || iRice < 0 {
		t.Fatalf("prompt missing inventory names:\n%s", prompt)
	}
	if !(iBroccoli < iChicken && iChicken < iRice) {
		t.Errorf("inventory names not alphabetical: broccoli=%d chicken=%d rice=%d", iBroccoli, iChicken, iRice)
	}

	for _, want := range []string{
		"exactly 3 recipes",
		"(mandatory)",
		"intermediate",
		"sauteing",
		"at least 3 ingredients",
		"2-4 people",
		`"title"`,
		`"cook_time"`,
		`"difficulty"`,
		`"servings"`,
		`"ingredients"`,
		`"steps"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Pure function: identical inputs yield the identical string.
	if again := BuildPrompt(inventory, expiring, SkillIntermediate, 3); again != prompt {
		t.Error("BuildPrompt is not deterministic")
	}
}

func TestBuildPromptUnknownSkillFallsBack(t *testing.T) {
	prompt := BuildPrompt([]stockpot.Item{{Name: "rice"}}, nil, SkillLevel("wizard"), 1)
	if !strings.Contains(prompt, "basic techniques") {
		t.Error("unknown skill level should fall back to the beginner profile")
	}
	if strings.Contains(prompt, "EXPIRING SOON") {
		t.Error("empty expiring set should omit the mandatory-use section")
	}
}
