// Package sfmgraph implements the in-memory, typed, multi-relational
// graph engine used to model a Social Fabric Matrix: typed node
// buckets, a central id index, a relationship store, an adjacency
// cache, and the supporting memory-management and query-cache layers.
package sfmgraph

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Node is satisfied by every concrete node variant. Registry dispatch
// (see registry.go) is driven entirely by concrete Go type, not by
// this interface's method set — Go has no notion of "every type
// implementing Node" closed at compile time, so an unregistered
// implementation is still a representable, if rejected, runtime value.
type Node interface {
	NodeID() uuid.UUID
	NodeLabel() string
	SetModified(time.Time)

	// ApproxSizeInBytes estimates the node's in-memory footprint, the
	// Go analogue of graph.py's get_node_size_estimate.
	ApproxSizeInBytes() int
}

// NodeBase is embedded by every concrete node variant. It is the Go
// analogue of base_nodes.py's Node dataclass: identity, free-form
// metadata, and the versioning/data-quality envelope every node
// carries regardless of its domain-specific fields.
type NodeBase struct {
	ID                 uuid.UUID
	Label              string
	Description        string
	Meta               map[string]string
	Version            int
	CreatedAt          time.Time
	ModifiedAt         time.Time
	Certainty          float64
	DataQuality        string
	PreviousVersionID  uuid.UUID
}

// NewNodeBase builds a NodeBase with a fresh ID, version 1, certainty
// 1.0, and CreatedAt set to now — the Go equivalent of the dataclass's
// default_factory fields.
func NewNodeBase(label, description string) NodeBase {
	return NodeBase{
		ID:          uuid.New(),
		Label:       label,
		Description: description,
		Meta:        make(map[string]string),
		Version:     1,
		CreatedAt:   time.Now(),
		Certainty:   1.0,
	}
}

func (n *NodeBase) NodeID() uuid.UUID       { return n.ID }
func (n *NodeBase) NodeLabel() string       { return n.Label }
func (n *NodeBase) NodeDescription() string { return n.Description }
func (n *NodeBase) SetModified(t time.Time) { n.ModifiedAt = t }

// --- Core family ---------------------------------------------------

// Actor models individuals, firms, agencies, or communities, grounded
// on core_nodes.py's Actor.
type Actor struct {
	NodeBase
	LegalForm                 string
	Sector                    string
	PowerResources             map[string]float64
	DecisionMakingCapacity     float64
	InstitutionalAffiliations  []uuid.UUID
}

// Institution models a rule-in-use, organization, or informal norm —
// Hayden's three institutional layers — grounded on core_nodes.py's
// Institution.
type Institution struct {
	NodeBase
	Layer                  string
	FormalRules             []string
	InformalNorms           []string
	EnforcementMechanisms   []string
	LegitimacyBasis         string
	ChangeResistance        float64
	PathDependencies        []uuid.UUID
}

// Policy extends Institution with an implementing authority and
// enforcement strength, grounded on core_nodes.py's Policy(Institution).
type Policy struct {
	Institution
	Authority     string
	Enforcement   float64
	TargetSectors []string
}

// Resource models a stock or asset available for use or
// transformation, grounded on core_nodes.py's Resource.
type Resource struct {
	NodeBase
	ResourceType string
	Unit         string
}

// Process models a transformation activity converting inputs to
// outputs, grounded on core_nodes.py's Process.
type Process struct {
	NodeBase
	Technology          string
	ResponsibleActorID  uuid.UUID
}

// Flow is an edge-like node representing an actual quantified
// transfer of resources or value, grounded on core_nodes.py's Flow.
type Flow struct {
	NodeBase
	Nature                  string
	Quantity                float64
	Unit                    string
	FlowType                string
	SourceProcessID         uuid.UUID
	TargetProcessID         uuid.UUID
	TransformationCoeff     float64
	LossFactor              float64
	CeremonialComponent     float64
	InstrumentalComponent   float64
}

// ValueFlow extends Flow with value-creation and distribution
// tracking, grounded on core_nodes.py's ValueFlow(Flow).
type ValueFlow struct {
	Flow
	ValueCreated          float64
	ValueCaptured         float64
	BeneficiaryActors     []uuid.UUID
	DistributionalImpact  map[string]float64
}

// GovernanceStructure extends Institution with decision-making and
// accountability detail, grounded on core_nodes.py's
// GovernanceStructure(Institution).
type GovernanceStructure struct {
	Institution
	DecisionMakingProcess    string
	PowerDistribution        map[string]float64
	AccountabilityMechanisms []string
}

// --- Specialized family ----------------------------------------------

// BeliefSystem models a cultural myth, ideology, or worldview that
// guides decision-making, grounded on specialized_nodes.py's BeliefSystem.
type BeliefSystem struct {
	NodeBase
	Strength float64
	Domain   string
}

// TechnologySystem models a coherent system of techniques, tools, and
// knowledge, grounded on specialized_nodes.py's TechnologySystem.
type TechnologySystem struct {
	NodeBase
	Maturity      string
	Compatibility map[string]float64
}

// Indicator is a measurable proxy for system performance, grounded on
// specialized_nodes.py's Indicator.
type Indicator struct {
	NodeBase
	ValueCategory     string
	MeasurementUnit   string
	CurrentValue      float64
	TargetValue       float64
	ThresholdValues   map[string]float64
}

// FeedbackLoop represents a reinforcing or balancing feedback loop,
// grounded on specialized_nodes.py's FeedbackLoop.
type FeedbackLoop struct {
	NodeBase
	RelationshipIDs []uuid.UUID
	Polarity        string
	Strength        float64
	LoopType        string
}

// SystemProperty represents a system-level property or metric of the
// SFM, grounded on specialized_nodes.py's SystemProperty.
type SystemProperty struct {
	NodeBase
	PropertyType              string
	Value                     float64
	Unit                      string
	AffectedNodes             []uuid.UUID
	ContributingRelationships []uuid.UUID
}

// AnalyticalContext holds metadata about analysis parameters and
// configuration, grounded on specialized_nodes.py's AnalyticalContext.
type AnalyticalContext struct {
	NodeBase
	MethodsUsed        []string
	Assumptions        map[string]string
	DataSources        map[string]string
	ValidationApproach string
	Parameters         map[string]interface{}
}

// PolicyInstrument is a specific tool used to implement a policy,
// grounded on specialized_nodes.py's PolicyInstrument.
type PolicyInstrument struct {
	NodeBase
	InstrumentType         string
	TargetBehavior         string
	ComplianceMechanism    string
	EffectivenessMeasure   float64
}

// --- Behavioral family ------------------------------------------------

// ValueSystem is a hierarchical value structure that guides
// institutional behavior, grounded on behavioral_nodes.py's ValueSystem.
type ValueSystem struct {
	NodeBase
	ParentValues     []uuid.UUID
	PriorityWeight   float64
	CulturalDomain   string
	LegitimacySource string
}

// CeremonialBehavior models Hayden's ceremonial behaviors that resist
// change, grounded on behavioral_nodes.py's CeremonialBehavior.
type CeremonialBehavior struct {
	NodeBase
	RigidityLevel       float64
	TraditionStrength   float64
	ResistanceToChange  float64
}

// InstrumentalBehavior models problem-solving, adaptive behaviors,
// grounded on behavioral_nodes.py's InstrumentalBehavior.
type InstrumentalBehavior struct {
	NodeBase
	EfficiencyMeasure   float64
	AdaptabilityScore   float64
	InnovationPotential float64
}

// ChangeProcess models institutional and technological change over
// time, grounded on behavioral_nodes.py's ChangeProcess.
type ChangeProcess struct {
	NodeBase
	ChangeType          string
	ChangeAgents        []uuid.UUID
	ResistanceFactors   []uuid.UUID
	SuccessProbability  float64
}

// CognitiveFramework models mental models and worldviews that shape
// perception, grounded on behavioral_nodes.py's CognitiveFramework.
type CognitiveFramework struct {
	NodeBase
	FramingEffects      map[string]string
	CognitiveBiases     []string
	InformationFilters  []string
	LearningCapacity    float64
}

// BehavioralPattern models recurring patterns of behavior in the
// social fabric, grounded on behavioral_nodes.py's BehavioralPattern.
type BehavioralPattern struct {
	NodeBase
	PatternType       string
	Frequency         float64
	Predictability    float64
	ContextDependency []string
}

// --- Analytical family -------------------------------------------------

// NetworkMetrics captures network analysis metrics for nodes or
// subgraphs, grounded on graph.py's NetworkMetrics(Node).
type NetworkMetrics struct {
	NodeBase
	CentralityMeasures    map[string]float64
	ClusteringCoefficient float64
	PathLengths           map[uuid.UUID]float64
	CommunityAssignment   string
}

// CacheKeyID implements cache.Identifiable so nodes passed as query
// cache arguments key on their ID rather than a %v dump.
func (n *NodeBase) CacheKeyID() string { return n.ID.String() }

// --- Size estimation -------------------------------------------------

// approxNodeSize estimates n's in-memory footprint: the concrete
// struct's own size plus its label/description string backing
// storage, the Go analogue of get_node_size_estimate's
// sys.getsizeof(node) + sys.getsizeof(node.label) +
// sys.getsizeof(node.description). reflect.Type.Size() already counts
// every field's header (a string's data pointer/len, a slice's
// pointer/len/cap, a map's single pointer), so only the variable-length
// backing bytes of the label and description need adding on top.
func approxNodeSize(n Node) int {
	v := reflect.ValueOf(n)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return 0
		}
		v = v.Elem()
	}
	size := int(v.Type().Size())
	size += len(n.NodeLabel())
	if d, ok := n.(interface{ NodeDescription() string }); ok {
		size += len(d.NodeDescription())
	}
	return size
}

func (n *Actor) ApproxSizeInBytes() int                { return approxNodeSize(n) }
func (n *Institution) ApproxSizeInBytes() int          { return approxNodeSize(n) }
func (n *Policy) ApproxSizeInBytes() int                { return approxNodeSize(n) }
func (n *Resource) ApproxSizeInBytes() int              { return approxNodeSize(n) }
func (n *Process) ApproxSizeInBytes() int               { return approxNodeSize(n) }
func (n *Flow) ApproxSizeInBytes() int                  { return approxNodeSize(n) }
func (n *ValueFlow) ApproxSizeInBytes() int             { return approxNodeSize(n) }
func (n *GovernanceStructure) ApproxSizeInBytes() int   { return approxNodeSize(n) }
func (n *BeliefSystem) ApproxSizeInBytes() int          { return approxNodeSize(n) }
func (n *TechnologySystem) ApproxSizeInBytes() int      { return approxNodeSize(n) }
func (n *Indicator) ApproxSizeInBytes() int             { return approxNodeSize(n) }
func (n *FeedbackLoop) ApproxSizeInBytes() int          { return approxNodeSize(n) }
func (n *SystemProperty) ApproxSizeInBytes() int        { return approxNodeSize(n) }
func (n *AnalyticalContext) ApproxSizeInBytes() int     { return approxNodeSize(n) }
func (n *PolicyInstrument) ApproxSizeInBytes() int      { return approxNodeSize(n) }
func (n *ValueSystem) ApproxSizeInBytes() int           { return approxNodeSize(n) }
func (n *CeremonialBehavior) ApproxSizeInBytes() int    { return approxNodeSize(n) }
func (n *InstrumentalBehavior) ApproxSizeInBytes() int  { return approxNodeSize(n) }
func (n *ChangeProcess) ApproxSizeInBytes() int         { return approxNodeSize(n) }
func (n *CognitiveFramework) ApproxSizeInBytes() int    { return approxNodeSize(n) }
func (n *BehavioralPattern) ApproxSizeInBytes() int     { return approxNodeSize(n) }
func (n *NetworkMetrics) ApproxSizeInBytes() int        { return approxNodeSize(n) }
