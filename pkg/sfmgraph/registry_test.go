package sfmgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryP2Specificity covers P2: a ValueFlow routes to
// value_flows (not flows); a Policy routes to policies (not
// institutions); symmetrically for Flow/Institution themselves.
func TestRegistryP2Specificity(t *testing.T) {
	registry := NewNodeTypeRegistry()

	vf := &ValueFlow{Flow: Flow{NodeBase: NewNodeBase("vf", "")}}
	bucket, err := registry.BucketFor(vf)
	require.NoError(t, err)
	assert.Equal(t, bucketValueFlows, bucket)

	flow := &Flow{NodeBase: NewNodeBase("flow", "")}
	bucket, err = registry.BucketFor(flow)
	require.NoError(t, err)
	assert.Equal(t, bucketFlows, bucket)

	policy := &Policy{Institution: Institution{NodeBase: NewNodeBase("p", "")}}
	bucket, err = registry.BucketFor(policy)
	require.NoError(t, err)
	assert.Equal(t, bucketPolicies, bucket)

	institution := &Institution{NodeBase: NewNodeBase("i", "")}
	bucket, err = registry.BucketFor(institution)
	require.NoError(t, err)
	assert.Equal(t, bucketInstitutions, bucket)

	gov := &GovernanceStructure{Institution: Institution{NodeBase: NewNodeBase("g", "")}}
	bucket, err = registry.BucketFor(gov)
	require.NoError(t, err)
	assert.Equal(t, bucketGovernanceStructures, bucket)
}

func TestRegistryUnsupportedType(t *testing.T) {
	registry := NewNodeTypeRegistry()
	_, err := registry.BucketFor(nil)
	assert.Error(t, err)
	var unsupported *ErrUnsupportedNodeType
	assert.ErrorAs(t, err, &unsupported)
}

func TestRegistryBucketNamesCoverage(t *testing.T) {
	registry := NewNodeTypeRegistry()
	assert.Len(t, registry.BucketNames(), 22)
}
