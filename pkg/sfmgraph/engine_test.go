package sfmgraph

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultEngineConfig())
	require.NoError(t, err)
	return e
}

// TestEngineP1CountAndIteration covers P1: after distinct adds with no
// eviction, count and iteration agree with the number of adds.
func TestEngineP1CountAndIteration(t *testing.T) {
	e := newTestEngine(t)

	actor := &Actor{NodeBase: NewNodeBase("A", "")}
	resource := &Resource{NodeBase: NewNodeBase("R", "")}
	process := &Process{NodeBase: NewNodeBase("P", "")}

	for _, n := range []Node{actor, resource, process} {
		_, err := e.AddNode(n)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, e.Count())

	seen := make(map[uuid.UUID]bool)
	for _, n := range e.Iterate() {
		assert.False(t, seen[n.NodeID()], "each node must appear exactly once")
		seen[n.NodeID()] = true
	}
	assert.Len(t, seen, 3)
}

// TestEngineS6RegistryDispatch runs the literal S6 scenario.
func TestEngineS6RegistryDispatch(t *testing.T) {
	e := newTestEngine(t)

	actor := &Actor{NodeBase: NewNodeBase("actor", "")}
	flow := &Flow{NodeBase: NewNodeBase("flow", "")}
	valueFlow := &ValueFlow{Flow: Flow{NodeBase: NewNodeBase("vflow", "")}}
	policy := &Policy{Institution: Institution{NodeBase: NewNodeBase("policy", "")}}
	institution := &Institution{NodeBase: NewNodeBase("institution", "")}
	governance := &GovernanceStructure{Institution: Institution{NodeBase: NewNodeBase("gov", "")}}

	for _, n := range []Node{actor, flow, valueFlow, policy, institution, governance} {
		_, err := e.AddNode(n)
		require.NoError(t, err)
	}

	assert.Equal(t, 6, e.Count())
	assert.Len(t, e.buckets[bucketActors], 1)
	assert.Len(t, e.buckets[bucketFlows], 1)
	assert.Len(t, e.buckets[bucketValueFlows], 1)
	assert.Len(t, e.buckets[bucketPolicies], 1)
	assert.Len(t, e.buckets[bucketInstitutions], 1)
	assert.Len(t, e.buckets[bucketGovernanceStructures], 1)
}

// TestEngineP3AdjacencyFreshness covers P3: after add_relationship,
// relationships_of on either endpoint includes it.
func TestEngineP3AdjacencyFreshness(t *testing.T) {
	e := newTestEngine(t)

	source := &Actor{NodeBase: NewNodeBase("source", "")}
	target := &Actor{NodeBase: NewNodeBase("target", "")}
	_, err := e.AddNode(source)
	require.NoError(t, err)
	_, err = e.AddNode(target)
	require.NoError(t, err)

	rel := NewRelationship(source.NodeID(), target.NodeID(), RelationshipAssociates)
	_, err = e.AddRelationship(rel)
	require.NoError(t, err)

	sourceRels := e.RelationshipsOf(source.NodeID())
	targetRels := e.RelationshipsOf(target.NodeID())

	assert.Contains(t, relationshipIDs(sourceRels), rel.ID)
	assert.Contains(t, relationshipIDs(targetRels), rel.ID)
}

// TestEngineP4CacheIdempotence covers P4: two consecutive
// relationships_of calls with no intervening mutation return equal
// lists.
func TestEngineP4CacheIdempotence(t *testing.T) {
	e := newTestEngine(t)

	source := &Actor{NodeBase: NewNodeBase("source", "")}
	target := &Actor{NodeBase: NewNodeBase("target", "")}
	_, err := e.AddNode(source)
	require.NoError(t, err)
	_, err = e.AddNode(target)
	require.NoError(t, err)

	rel := NewRelationship(source.NodeID(), target.NodeID(), RelationshipAssociates)
	_, err = e.AddRelationship(rel)
	require.NoError(t, err)

	first := e.RelationshipsOf(source.NodeID())
	second := e.RelationshipsOf(source.NodeID())
	assert.Equal(t, relationshipIDs(first), relationshipIDs(second))
}

// TestEngineP10LazyLoadIntegration covers P10: a configured loader
// resolves a missing id exactly once and registers it in the index.
func TestEngineP10LazyLoadIntegration(t *testing.T) {
	e := newTestEngine(t)

	target := uuid.New()
	loadCalls := 0
	e.EnableLazyLoading(func(id uuid.UUID) (Node, error) {
		loadCalls++
		base := NewNodeBase("lazy", "")
		base.ID = id
		return &Actor{NodeBase: base}, nil
	})

	before := e.Count()
	n, ok := e.GetNode(target)
	require.True(t, ok)
	assert.Equal(t, target, n.NodeID())
	assert.Equal(t, before+1, e.Count())

	_, ok = e.GetNode(target)
	require.True(t, ok)
	assert.Equal(t, 1, loadCalls, "the loader must not be called again once the node is indexed")
}

func TestEngineGetNodeMissWithoutLazyLoading(t *testing.T) {
	e := newTestEngine(t)
	_, ok := e.GetNode(uuid.New())
	assert.False(t, ok)
}

func TestEngineAddNodeRejectsUnsupportedType(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.AddNode(nil)
	require.Error(t, err)
	var unsupported *ErrUnsupportedNodeType
	assert.True(t, errors.As(err, &unsupported))
}

func TestEngineRemoveFromMemory(t *testing.T) {
	e := newTestEngine(t)
	actor := &Actor{NodeBase: NewNodeBase("A", "")}
	_, err := e.AddNode(actor)
	require.NoError(t, err)

	assert.True(t, e.RemoveFromMemory(actor.NodeID()))
	assert.Equal(t, 0, e.Count())
	assert.False(t, e.RemoveFromMemory(actor.NodeID()), "removing twice returns false")
}

func TestEngineClear(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.AddNode(&Actor{NodeBase: NewNodeBase("A", "")})
	require.NoError(t, err)

	e.Clear()
	assert.Equal(t, 0, e.Count())
	assert.Empty(t, e.Iterate())
}

// TestEngineS5EvictionUnderPressure runs a scaled-down version of S5:
// build a graph, access a protected set repeatedly, force eviction,
// and confirm none of the protected ids were removed.
func TestEngineS5EvictionUnderPressure(t *testing.T) {
	e := newTestEngine(t)
	e.SetEvictionStrategy(EvictionLRU)

	protected := make([]uuid.UUID, 0, 10)
	for i := 0; i < 150; i++ {
		actor := &Actor{NodeBase: NewNodeBase("actor", "")}
		_, err := e.AddNode(actor)
		require.NoError(t, err)
		if i < 10 {
			protected = append(protected, actor.NodeID())
		}
	}

	// Touch the protected ids repeatedly so they are the most recently
	// used and therefore never chosen by the LRU strategy.
	for r := 0; r < 5; r++ {
		for _, id := range protected {
			e.GetNode(id)
		}
	}

	evicted := e.ForceMemoryCleanup()
	assert.Greater(t, evicted, 0)

	for _, id := range protected {
		_, ok := e.GetNode(id)
		assert.True(t, ok, "protected ids must survive eviction")
	}
}

func relationshipIDs(rels []*Relationship) []uuid.UUID {
	ids := make([]uuid.UUID, len(rels))
	for i, r := range rels {
		ids[i] = r.ID
	}
	return ids
}
