package sfmgraph

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSnapshotRoundTrip covers the one component with zero prior
// coverage: WriteSnapshot/RestoreEngine's gob round-trip through
// several distinct concrete node families plus a relationship. A
// missed gob.Register or an interface-typed map encoding bug would
// panic here rather than at runtime against real data.
func TestSnapshotRoundTrip(t *testing.T) {
	e, err := NewEngine(DefaultEngineConfig())
	require.NoError(t, err)

	actor := &Actor{
		NodeBase:               NewNodeBase("Regulatory Agency", "oversees compliance"),
		LegalForm:              "public_body",
		Sector:                 "government",
		DecisionMakingCapacity: 0.8,
	}
	policy := &Policy{
		Institution: Institution{
			NodeBase: NewNodeBase("Emissions Cap", "caps industrial emissions"),
			Layer:    "formal_rule",
		},
		Authority:     "federal",
		Enforcement:   0.6,
		TargetSectors: []string{"energy", "manufacturing"},
	}
	valueFlow := &ValueFlow{
		Flow: Flow{
			NodeBase: NewNodeBase("Subsidy Transfer", "annual subsidy payment"),
			Nature:   "monetary",
			Quantity: 1500000,
			Unit:     "USD",
		},
		ValueCreated:  2000000,
		ValueCaptured: 1500000,
	}

	addedActor, err := e.AddNode(actor)
	require.NoError(t, err)
	addedPolicy, err := e.AddNode(policy)
	require.NoError(t, err)
	addedFlow, err := e.AddNode(valueFlow)
	require.NoError(t, err)

	rel := NewRelationship(addedPolicy.NodeID(), addedActor.NodeID(), RelationshipGoverns)
	rel.Weight = 0.9
	_, err = e.AddRelationship(rel)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.WriteSnapshot(&buf))

	restored, err := RestoreEngine(&buf, DefaultEngineConfig())
	require.NoError(t, err)

	assert.Equal(t, e.Count(), restored.Count())
	assert.Equal(t, 3, restored.Count())

	gotActor, ok := restored.GetNode(addedActor.NodeID())
	require.True(t, ok)
	restoredActor, ok := gotActor.(*Actor)
	require.True(t, ok)
	assert.Equal(t, "Regulatory Agency", restoredActor.Label)
	assert.Equal(t, "public_body", restoredActor.LegalForm)
	assert.Equal(t, 0.8, restoredActor.DecisionMakingCapacity)

	gotPolicy, ok := restored.GetNode(addedPolicy.NodeID())
	require.True(t, ok)
	restoredPolicy, ok := gotPolicy.(*Policy)
	require.True(t, ok)
	assert.Equal(t, "Emissions Cap", restoredPolicy.Label)
	assert.Equal(t, "federal", restoredPolicy.Authority)
	assert.Equal(t, []string{"energy", "manufacturing"}, restoredPolicy.TargetSectors)

	gotFlow, ok := restored.GetNode(addedFlow.NodeID())
	require.True(t, ok)
	restoredFlow, ok := gotFlow.(*ValueFlow)
	require.True(t, ok)
	assert.Equal(t, 1500000.0, restoredFlow.Quantity)
	assert.Equal(t, 2000000.0, restoredFlow.ValueCreated)

	rels := restored.RelationshipsOf(addedActor.NodeID())
	require.Len(t, rels, 1)
	assert.Equal(t, RelationshipGoverns, rels[0].Kind)
	assert.Equal(t, addedPolicy.NodeID(), rels[0].SourceID)
	assert.Equal(t, addedActor.NodeID(), rels[0].TargetID)
	assert.Equal(t, 0.9, rels[0].Weight)
}

// TestSnapshotRoundTripEmptyEngine covers the degenerate case: an
// engine with no nodes or relationships must still round-trip cleanly
// rather than erroring on an empty gob-encoded map.
func TestSnapshotRoundTripEmptyEngine(t *testing.T) {
	e, err := NewEngine(DefaultEngineConfig())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.WriteSnapshot(&buf))

	restored, err := RestoreEngine(&buf, DefaultEngineConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, restored.Count())
}
