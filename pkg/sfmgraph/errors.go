package sfmgraph

import "errors"

// Sentinel errors wrapped with context via fmt.Errorf("...: %w", ...)
// at their call sites, so callers can errors.Is/errors.As them. Hot
// path lookups (GetNode, RelationshipsOf) use a (value, bool) or
// (value, error) return instead — they are not represented here.
var (
	// ErrUnknownRelationshipKind is returned by ParseRelationshipKind
	// for any string outside the closed RelationshipKind enumeration.
	ErrUnknownRelationshipKind = errors.New("unknown relationship kind")

	// ErrInvalidRelationshipContext is returned when a relationship's
	// kind is not a valid pairing for its source/target node types.
	ErrInvalidRelationshipContext = errors.New("invalid relationship context")

	// ErrNodeNotFound reports an absent node as an error value. No
	// Engine method returns it: GetNode, including its lazy-load failure
	// path, reports absence as (nil, false).
	ErrNodeNotFound = errors.New("node not found")

	// ErrLazyLoaderNotConfigured describes lazy loading switched on with
	// no loader installed. No Engine method returns it: GetNode treats
	// that case as a plain miss and returns (nil, false).
	ErrLazyLoaderNotConfigured = errors.New("lazy loading enabled without a node loader")
)
