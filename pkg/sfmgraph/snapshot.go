package sfmgraph

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Snapshot is the pickle-equivalent serialized form of an Engine: it
// captures every node in the id index (buckets are rebuilt from them
// on restore) and the relationship store. It carries no model
// metadata. It deliberately omits the memory monitor and query cache,
// which are re-created from the EngineConfig passed to RestoreEngine.
// Grounded on graph.py's __getstate__/__setstate__.
type Snapshot struct {
	Nodes         map[uuid.UUID]Node
	Relationships map[uuid.UUID]*Relationship
}

func init() {
	gob.Register(&Actor{})
	gob.Register(&Institution{})
	gob.Register(&Policy{})
	gob.Register(&Resource{})
	gob.Register(&Process{})
	gob.Register(&Flow{})
	gob.Register(&ValueFlow{})
	gob.Register(&GovernanceStructure{})
	gob.Register(&BeliefSystem{})
	gob.Register(&TechnologySystem{})
	gob.Register(&Indicator{})
	gob.Register(&FeedbackLoop{})
	gob.Register(&SystemProperty{})
	gob.Register(&AnalyticalContext{})
	gob.Register(&PolicyInstrument{})
	gob.Register(&ValueSystem{})
	gob.Register(&CeremonialBehavior{})
	gob.Register(&InstrumentalBehavior{})
	gob.Register(&ChangeProcess{})
	gob.Register(&CognitiveFramework{})
	gob.Register(&BehavioralPattern{})
	gob.Register(&NetworkMetrics{})
}

// Snapshot captures the engine's durable state: every node reachable
// through the id index and every relationship. The memory monitor and
// query cache are intentionally excluded — they hold derived,
// reconstructible state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	nodes := make(map[uuid.UUID]Node, len(e.idIndex))
	for id, n := range e.idIndex {
		nodes[id] = n
	}
	rels := make(map[uuid.UUID]*Relationship, len(e.rels))
	for id, r := range e.rels {
		rels[id] = r
	}
	return Snapshot{Nodes: nodes, Relationships: rels}
}

// WriteSnapshot gob-encodes a Snapshot of the engine to w.
func (e *Engine) WriteSnapshot(w io.Writer) error {
	snap := e.Snapshot()
	enc := gob.NewEncoder(w)
	if err := enc.Encode(snap.Nodes); err != nil {
		return fmt.Errorf("encoding nodes: %w", err)
	}
	if err := enc.Encode(snap.Relationships); err != nil {
		return fmt.Errorf("encoding relationships: %w", err)
	}
	return nil
}

// RestoreEngine rebuilds an Engine from a gob-encoded snapshot
// produced by WriteSnapshot. The memory monitor and query cache are
// reconstructed fresh from cfg rather than deserialized, matching the
// pickle-equivalent round-trip contract: restored state reproduces
// the graph's nodes and relationships, not its caches or eviction
// history.
func RestoreEngine(r io.Reader, cfg EngineConfig) (*Engine, error) {
	var nodes map[uuid.UUID]Node
	var rels map[uuid.UUID]*Relationship

	dec := gob.NewDecoder(r)
	if err := dec.Decode(&nodes); err != nil {
		return nil, fmt.Errorf("decoding nodes: %w", err)
	}
	if err := dec.Decode(&rels); err != nil {
		return nil, fmt.Errorf("decoding relationships: %w", err)
	}

	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	for _, n := range nodes {
		if _, err := e.AddNode(n); err != nil {
			return nil, fmt.Errorf("restoring node %s: %w", n.NodeID(), err)
		}
	}
	for _, r := range rels {
		if _, err := e.AddRelationship(r); err != nil {
			return nil, fmt.Errorf("restoring relationship %s: %w", r.ID, err)
		}
	}

	return e, nil
}
