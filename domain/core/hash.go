package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, enough for log correlation
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// PromptHash fingerprints a rendered prompt so LLM call traces can be grouped
type PromptHash Hash

// ComputePromptHash hashes the ordered message contents of a completion request
func ComputePromptHash(parts ...string) PromptHash {
	return PromptHash(NewHash([]byte(strings.Join(parts, "\x1f"))))
}

func (h PromptHash) String() string { return Hash(h).String() }
func (h PromptHash) Short() string  { return Hash(h).Short() }
