package sfmgraph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RelationshipKind is a closed enumeration of SFM-domain relationship
// kinds, extending the pattern of RelationshipType in the teacher's
// pkg/models/relationships.go. Per the REDESIGN FLAGS decision, free
// string values are rejected at ingress — use ParseRelationshipKind
// rather than a bare string conversion.
type RelationshipKind string

const (
	RelationshipReferences RelationshipKind = "references"
	RelationshipContains   RelationshipKind = "contains"
	RelationshipCreates    RelationshipKind = "creates"
	RelationshipModifies   RelationshipKind = "modifies"
	RelationshipAssociates RelationshipKind = "associates"
	RelationshipDependsOn  RelationshipKind = "depends_on"
	RelationshipImplements RelationshipKind = "implements"
	RelationshipExtends    RelationshipKind = "extends"
	RelationshipReplaces   RelationshipKind = "replaces"
	RelationshipComments   RelationshipKind = "comments"
	RelationshipGoverns    RelationshipKind = "governs"
	RelationshipFunds      RelationshipKind = "funds"
	RelationshipRegulates  RelationshipKind = "regulates"
	RelationshipInfluences RelationshipKind = "influences"
	RelationshipTransforms RelationshipKind = "transforms"
)

var validRelationshipKinds = map[RelationshipKind]struct{}{
	RelationshipReferences: {}, RelationshipContains: {}, RelationshipCreates: {},
	RelationshipModifies: {}, RelationshipAssociates: {}, RelationshipDependsOn: {},
	RelationshipImplements: {}, RelationshipExtends: {}, RelationshipReplaces: {},
	RelationshipComments: {}, RelationshipGoverns: {}, RelationshipFunds: {},
	RelationshipRegulates: {}, RelationshipInfluences: {}, RelationshipTransforms: {},
}

// ParseRelationshipKind validates a raw string against the closed
// enumeration, returning an error for anything unrecognized rather
// than silently accepting it.
func ParseRelationshipKind(raw string) (RelationshipKind, error) {
	kind := RelationshipKind(raw)
	if _, ok := validRelationshipKinds[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelationshipKind, raw)
	}
	return kind, nil
}

// Relationship is a typed edge connecting two nodes, grounded on
// relationships.py's Relationship. Temporal/spatial context
// (TimeSlice, SpatialUnit, Scenario) is out of scope for this engine;
// weight, certainty, and the versioning envelope are kept.
type Relationship struct {
	ID                uuid.UUID
	SourceID          uuid.UUID
	TargetID          uuid.UUID
	Kind              RelationshipKind
	Weight            float64
	Meta              map[string]string
	Certainty         float64
	Variability       float64
	Version           int
	CreatedAt         time.Time
	ModifiedAt        time.Time
	DataQuality       string
	PreviousVersionID uuid.UUID
}

// NewRelationship builds a Relationship with a fresh ID, version 1,
// certainty 1.0, and CreatedAt set to now.
func NewRelationship(sourceID, targetID uuid.UUID, kind RelationshipKind) *Relationship {
	return &Relationship{
		ID:        uuid.New(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Kind:      kind,
		Meta:      make(map[string]string),
		Certainty: 1.0,
		Version:   1,
		CreatedAt: time.Now(),
	}
}

// CacheKeyID implements cache.Identifiable.
func (r *Relationship) CacheKeyID() string { return r.ID.String() }

// InvolvesNode reports whether nodeID is this relationship's source
// or target.
func (r *Relationship) InvolvesNode(nodeID uuid.UUID) bool {
	return r.SourceID == nodeID || r.TargetID == nodeID
}
