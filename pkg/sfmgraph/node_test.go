package sfmgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestApproxSizeInBytesReflectsPayload covers the Accessor contract's
// size_estimate(): two nodes of the same type but different label
// lengths must report different sizes, and the estimate must be
// derived from the node's actual fields rather than a fixed constant.
func TestApproxSizeInBytesReflectsPayload(t *testing.T) {
	short := &Actor{NodeBase: NewNodeBase("a", "")}
	long := &Actor{NodeBase: NewNodeBase("a much longer label than the other one", "with a description too")}

	assert.Greater(t, long.ApproxSizeInBytes(), short.ApproxSizeInBytes())
	assert.Positive(t, short.ApproxSizeInBytes())
}

// TestApproxSizeInBytesVariesByConcreteType covers the same contract
// across the type hierarchy: a type with more embedded fields (Policy,
// which embeds Institution) must report a larger base size than a
// leaf type with an equally short label (Resource).
func TestApproxSizeInBytesVariesByConcreteType(t *testing.T) {
	resource := &Resource{NodeBase: NewNodeBase("r", "")}
	policy := &Policy{Institution: Institution{NodeBase: NewNodeBase("r", "")}}

	assert.Greater(t, policy.ApproxSizeInBytes(), resource.ApproxSizeInBytes())
}
