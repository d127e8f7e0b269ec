package types

import "errors"

// Sentinel errors for CDS engine operations.
var (
	// ErrTokenTooLong indicates a trie token exceeds MaxTokenLength.
	ErrTokenTooLong = errors.New("token exceeds maximum length")

	// ErrTrieFull indicates an insert would exceed MaxTrieNodes.
	// The trie is left untouched; all prior insertions remain searchable.
	ErrTrieFull = errors.New("trie node budget exhausted")

	// ErrRuleNotFound indicates a lookup for an unknown rule identifier.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrNoCatalog indicates the store has no active catalog version yet.
	ErrNoCatalog = errors.New("no rule catalog loaded")

	// ErrSourcePathTooDeep indicates an explanation source path exceeds
	// MaxSourcePathDepth.
	ErrSourcePathTooDeep = errors.New("source path exceeds maximum depth")

	// ErrEmptySnapshot indicates a matching request without any facts.
	ErrEmptySnapshot = errors.New("patient snapshot is empty")
)
