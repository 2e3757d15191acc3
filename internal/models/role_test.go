package models

import "testing"

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "model"} {
		if _, err := ParseRole(s); err != nil {
			t.Errorf("ParseRole(%q) error: %v", s, err)
		}
	}
	if _, err := ParseRole("assistant"); err == nil {
		t.Error("generation-side role must not parse as a storage role")
	}
	if _, err := ParseRole(""); err == nil {
		t.Error("empty role should not parse")
	}
}

func TestGenerationRole(t *testing.T) {
	if RoleUser.GenerationRole() != "user" {
		t.Error("user maps to user")
	}
	if RoleModel.GenerationRole() != "assistant" {
		t.Error("model maps to assistant")
	}
}
