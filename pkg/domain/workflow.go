package domain

import (
	"errors"
	"time"
)

var (
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrWorkflowNotActive = errors.New("workflow is not active")
)

type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "DRAFT"
	WorkflowStatusActive   WorkflowStatus = "ACTIVE"
	WorkflowStatusPaused   WorkflowStatus = "PAUSED"
	WorkflowStatusArchived WorkflowStatus = "ARCHIVED"
)

type NodeType string

const (
	NodeTypeTrigger      NodeType = "trigger"
	NodeTypeAction       NodeType = "action"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeDelay        NodeType = "delay"
	NodeTypeNotification NodeType = "notification"
	NodeTypeEmail        NodeType = "email"
	NodeTypeAPI          NodeType = "api"
	NodeTypeDatabase     NodeType = "database"
	NodeTypeWebhook      NodeType = "webhook"
	NodeTypeTransform    NodeType = "transform"
	NodeTypeFilter       NodeType = "filter"
	NodeTypeLoop         NodeType = "loop"
	NodeTypeParallel     NodeType = "parallel"
	NodeTypeHTTP         NodeType = "http"
	NodeTypeAI           NodeType = "ai"
	NodeTypeIntegration  NodeType = "integration"
)

// ConditionFailurePolicy decides what happens when a condition cannot be
// evaluated because it is malformed.
type ConditionFailurePolicy string

const (
	// ConditionFailurePolicyContinue treats the condition as true and records a warning.
	ConditionFailurePolicyContinue ConditionFailurePolicy = "continue"
	// ConditionFailurePolicyBlock treats the condition as false and records a warning.
	ConditionFailurePolicyBlock ConditionFailurePolicy = "block"
	// ConditionFailurePolicyFail records the evaluation failure as a node error.
	ConditionFailurePolicyFail ConditionFailurePolicy = "fail"
)

func (p ConditionFailurePolicy) OrDefault() ConditionFailurePolicy {
	switch p {
	case ConditionFailurePolicyBlock, ConditionFailurePolicyFail:
		return p
	default:
		return ConditionFailurePolicyContinue
	}
}

type WorkflowSettings struct {
	ConditionFailurePolicy ConditionFailurePolicy `json:"conditionFailurePolicy,omitempty" yaml:"conditionFailurePolicy,omitempty"`
	StrictEdges            bool                   `json:"strictEdges,omitempty" yaml:"strictEdges,omitempty"`
}

type WorkflowDefinition struct {
	ID             string           `json:"id" yaml:"id"`
	Name           string           `json:"name,omitempty" yaml:"name,omitempty"`
	Status         WorkflowStatus   `json:"status" yaml:"status"`
	Nodes          []Node           `json:"nodes" yaml:"nodes"`
	Edges          []Edge           `json:"edges" yaml:"edges"`
	Settings       WorkflowSettings `json:"settings,omitempty" yaml:"settings,omitempty"`
	ExecutionCount int64            `json:"executionCount" yaml:"executionCount,omitempty"`
	LastExecutedAt *time.Time       `json:"lastExecutedAt,omitempty" yaml:"lastExecutedAt,omitempty"`
}

func (w WorkflowDefinition) IsActive() bool {
	return w.Status == WorkflowStatusActive
}

func (w WorkflowDefinition) GetNodeByID(nodeID string) (Node, bool) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, true
		}
	}

	return Node{}, false
}

// TriggerNodes returns the nodes typed as triggers, in declaration order.
func (w WorkflowDefinition) TriggerNodes() []Node {
	triggers := []Node{}

	for _, node := range w.Nodes {
		if node.Type == NodeTypeTrigger {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

type Node struct {
	ID   string         `json:"id" yaml:"id"`
	Type NodeType       `json:"type" yaml:"type"`
	Name string         `json:"name,omitempty" yaml:"name,omitempty"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// StopOnError reports whether a failure of this node halts the run.
// Nodes stop on error unless their data sets stopOnError to false.
func (n Node) StopOnError() bool {
	value, ok := n.Data["stopOnError"]
	if !ok {
		return true
	}

	stop, ok := value.(bool)
	if !ok {
		return true
	}

	return stop
}

// Timeout returns the node level timeout override, if one is configured in
// milliseconds under the timeout key.
func (n Node) Timeout() (time.Duration, bool) {
	ms, ok := ToFloat(n.Data["timeout"])
	if !ok {
		return 0, false
	}

	timeout := MillisToDuration(ms)

	return timeout, timeout > 0
}

type Edge struct {
	ID        string         `json:"id" yaml:"id"`
	Source    string         `json:"source" yaml:"source"`
	Target    string         `json:"target" yaml:"target"`
	Condition *EdgeCondition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

type ConditionType string

const (
	ConditionTypeSuccess     ConditionType = "success"
	ConditionTypeError       ConditionType = "error"
	ConditionTypeEquals      ConditionType = "equals"
	ConditionTypeContains    ConditionType = "contains"
	ConditionTypeGreaterThan ConditionType = "greater_than"
	ConditionTypeLessThan    ConditionType = "less_than"
	ConditionTypeExists      ConditionType = "exists"
	ConditionTypeCustom      ConditionType = "custom"
)

// EdgeCondition is a typed predicate. Field is a property path into the data
// being tested; Expression is only used by custom conditions.
type EdgeCondition struct {
	Type       ConditionType `json:"type" yaml:"type"`
	Field      string        `json:"field,omitempty" yaml:"field,omitempty"`
	Value      any           `json:"value,omitempty" yaml:"value,omitempty"`
	Expression string        `json:"expression,omitempty" yaml:"expression,omitempty"`
}
