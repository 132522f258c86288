package sfmgraph

import "fmt"

// bucketName identifies one of the typed node collections a Node is
// routed into.
type bucketName string

const (
	bucketValueFlows            bucketName = "value_flows"
	bucketGovernanceStructures  bucketName = "governance_structures"
	bucketPolicies              bucketName = "policies"
	bucketInstitutions          bucketName = "institutions"
	bucketActors                bucketName = "actors"
	bucketResources             bucketName = "resources"
	bucketProcesses             bucketName = "processes"
	bucketFlows                 bucketName = "flows"
	bucketBeliefSystems         bucketName = "belief_systems"
	bucketTechnologySystems     bucketName = "technology_systems"
	bucketIndicators            bucketName = "indicators"
	bucketFeedbackLoops         bucketName = "feedback_loops"
	bucketSystemProperties      bucketName = "system_properties"
	bucketAnalyticalContexts    bucketName = "analytical_contexts"
	bucketPolicyInstruments     bucketName = "policy_instruments"
	bucketValueSystems          bucketName = "value_systems"
	bucketCeremonialBehaviors   bucketName = "ceremonial_behaviors"
	bucketInstrumentalBehaviors bucketName = "instrumental_behaviors"
	bucketChangeProcesses       bucketName = "change_processes"
	bucketCognitiveFrameworks   bucketName = "cognitive_frameworks"
	bucketBehavioralPatterns    bucketName = "behavioral_patterns"
	bucketNetworkMetrics        bucketName = "network_metrics"
)

// typeHandler pairs a type-test predicate with the bucket it routes
// to. Predicates are tried in order and the first match wins; the
// table lists subtypes before their parent types (e.g. ValueFlow
// before Flow, Policy before Institution), "most specific first".
type typeHandler struct {
	bucket  bucketName
	matches func(Node) bool
}

// NodeTypeRegistry maps a concrete Node value to the bucket it belongs
// in, grounded on graph.py's NodeTypeRegistry._type_handlers, keeping
// its most-specific-first order. Each predicate is an exact
// pointer-type assertion, and embedding does not make a *ValueFlow
// satisfy n.(*Flow), so a subtype never matches its parent's predicate
// whatever the order.
type NodeTypeRegistry struct {
	handlers []typeHandler
}

// NewNodeTypeRegistry builds the registry with the exact bucket order
// of the original implementation.
func NewNodeTypeRegistry() *NodeTypeRegistry {
	return &NodeTypeRegistry{
		handlers: []typeHandler{
			{bucketValueFlows, func(n Node) bool { _, ok := n.(*ValueFlow); return ok }},
			{bucketGovernanceStructures, func(n Node) bool { _, ok := n.(*GovernanceStructure); return ok }},
			{bucketPolicies, func(n Node) bool { _, ok := n.(*Policy); return ok }},
			{bucketInstitutions, func(n Node) bool { _, ok := n.(*Institution); return ok }},
			{bucketActors, func(n Node) bool { _, ok := n.(*Actor); return ok }},
			{bucketResources, func(n Node) bool { _, ok := n.(*Resource); return ok }},
			{bucketProcesses, func(n Node) bool { _, ok := n.(*Process); return ok }},
			{bucketFlows, func(n Node) bool { _, ok := n.(*Flow); return ok }},
			{bucketBeliefSystems, func(n Node) bool { _, ok := n.(*BeliefSystem); return ok }},
			{bucketTechnologySystems, func(n Node) bool { _, ok := n.(*TechnologySystem); return ok }},
			{bucketIndicators, func(n Node) bool { _, ok := n.(*Indicator); return ok }},
			{bucketFeedbackLoops, func(n Node) bool { _, ok := n.(*FeedbackLoop); return ok }},
			{bucketSystemProperties, func(n Node) bool { _, ok := n.(*SystemProperty); return ok }},
			{bucketAnalyticalContexts, func(n Node) bool { _, ok := n.(*AnalyticalContext); return ok }},
			{bucketPolicyInstruments, func(n Node) bool { _, ok := n.(*PolicyInstrument); return ok }},
			{bucketValueSystems, func(n Node) bool { _, ok := n.(*ValueSystem); return ok }},
			{bucketCeremonialBehaviors, func(n Node) bool { _, ok := n.(*CeremonialBehavior); return ok }},
			{bucketInstrumentalBehaviors, func(n Node) bool { _, ok := n.(*InstrumentalBehavior); return ok }},
			{bucketChangeProcesses, func(n Node) bool { _, ok := n.(*ChangeProcess); return ok }},
			{bucketCognitiveFrameworks, func(n Node) bool { _, ok := n.(*CognitiveFramework); return ok }},
			{bucketBehavioralPatterns, func(n Node) bool { _, ok := n.(*BehavioralPattern); return ok }},
			{bucketNetworkMetrics, func(n Node) bool { _, ok := n.(*NetworkMetrics); return ok }},
		},
	}
}

// ErrUnsupportedNodeType is wrapped with the offending node's concrete
// type whenever the registry can't find a matching bucket.
type ErrUnsupportedNodeType struct {
	Node Node
}

func (e *ErrUnsupportedNodeType) Error() string {
	return fmt.Sprintf("unsupported node type: %T", e.Node)
}

// BucketFor returns the bucket name node routes to, or
// ErrUnsupportedNodeType if no registered predicate matches.
func (r *NodeTypeRegistry) BucketFor(node Node) (bucketName, error) {
	for _, h := range r.handlers {
		if h.matches(node) {
			return h.bucket, nil
		}
	}
	return "", &ErrUnsupportedNodeType{Node: node}
}

// BucketNames returns every registered bucket name, in dispatch order.
func (r *NodeTypeRegistry) BucketNames() []bucketName {
	names := make([]bucketName, len(r.handlers))
	for i, h := range r.handlers {
		names[i] = h.bucket
	}
	return names
}
