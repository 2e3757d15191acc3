// Package models defines core data structures for chat, chunks, and crisis decisions.
package models

import "fmt"

// Role identifies who produced a conversation message. The storage and API
// vocabulary is closed: "user" and "model". Generation backends use their own
// vocabulary ("assistant"); GenerationRole maps across that boundary.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ParseRole validates a wire-format role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleModel:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// GenerationRole returns the role name expected by the Ollama chat API.
// Anything that is not a user turn is sent as "assistant".
func (r Role) GenerationRole() string {
	if r == RoleUser {
		return "user"
	}
	return "assistant"
}
