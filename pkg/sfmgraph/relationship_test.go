package sfmgraph

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelationshipKindAcceptsKnown(t *testing.T) {
	kind, err := ParseRelationshipKind("funds")
	require.NoError(t, err)
	assert.Equal(t, RelationshipFunds, kind)
}

func TestParseRelationshipKindRejectsUnknown(t *testing.T) {
	_, err := ParseRelationshipKind("teleports")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRelationshipKind))
}

func TestRelationshipInvolvesNode(t *testing.T) {
	source, target, other := uuid.New(), uuid.New(), uuid.New()
	rel := NewRelationship(source, target, RelationshipGoverns)

	assert.True(t, rel.InvolvesNode(source))
	assert.True(t, rel.InvolvesNode(target))
	assert.False(t, rel.InvolvesNode(other))
}

func TestNewRelationshipDefaults(t *testing.T) {
	rel := NewRelationship(uuid.New(), uuid.New(), RelationshipContains)
	assert.Equal(t, 1, rel.Version)
	assert.Equal(t, 1.0, rel.Certainty)
	assert.NotEqual(t, uuid.Nil, rel.ID)
}
