package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/flowdeck-io/flowdeck/internal/types"
)

// NodeType defines the kind of an action node on the canvas.
type NodeType string

const (
	NodeTypeSwitch   NodeType = "switch"
	NodeTypeMerge    NodeType = "merge"
	NodeTypeLoop     NodeType = "loop"
	NodeTypeCode     NodeType = "code"
	NodeTypeDatabase NodeType = "database"
)

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// IsValid checks if the node type is a supported value.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeSwitch, NodeTypeMerge, NodeTypeLoop, NodeTypeCode, NodeTypeDatabase:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (t NodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// UnmarshalJSON implements json.Unmarshaler, rejecting unknown node types.
func (t *NodeType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	nodeType := NodeType(str)
	if !nodeType.IsValid() {
		return fmt.Errorf("invalid node type: %s", str)
	}

	*t = nodeType
	return nil
}

// SwitchNodeConfig is the typed configuration record of a Switch node.
type SwitchNodeConfig struct {
	Conditions  []SwitchCondition `json:"conditions"`
	Mode        EvaluationMode    `json:"mode"`
	DefaultPort string            `json:"default_port,omitempty"`
}

// Evaluate evaluates the switch against a state snapshot.
func (c SwitchNodeConfig) Evaluate(state State) SwitchEvaluation {
	return EvaluateSwitch(c.Conditions, state, c.Mode)
}

// OutputPorts returns the ports this switch routes to for a state snapshot.
func (c SwitchNodeConfig) OutputPorts(state State) []string {
	return SwitchOutputPorts(c.Conditions, state, c.Mode, c.DefaultPort)
}

// Validate returns a list of configuration violations.
func (c SwitchNodeConfig) Validate() []string {
	var violations []string

	if !c.Mode.IsValid() {
		violations = append(violations, fmt.Sprintf("unknown evaluation mode %q", string(c.Mode)))
	}
	for i, cond := range c.Conditions {
		if !cond.Operator.IsValid() {
			violations = append(violations,
				fmt.Sprintf("condition %d: unknown operator %q", i, string(cond.Operator)))
		}
		if cond.OutputPort == "" {
			violations = append(violations, fmt.Sprintf("condition %d: output port is required", i))
		}
	}

	return violations
}

// Node is one action node of a workflow document. Exactly one of the typed
// configuration records is set, matching the node type; the rest stay nil.
// Every record survives a JSON serialize/deserialize round trip with all
// fields preserved, which is what the property-panel save path relies on.
type Node struct {
	ID   types.ID `json:"id"`
	Type NodeType `json:"type"`
	Name string   `json:"name"`

	Switch       *SwitchNodeConfig   `json:"switch,omitempty"`
	Merge        *MergeConfig        `json:"merge,omitempty"`
	Loop         *LoopResultsConfig  `json:"loop,omitempty"`
	Sandbox      *SandboxConfig      `json:"sandbox,omitempty"`
	Database     *DatabaseConnection `json:"database,omitempty"`
	DatabaseType DatabaseType        `json:"database_type,omitempty"`
}

// configForType maps each node type to whether its config record is present.
func (n *Node) configForType() (bool, string) {
	switch n.Type {
	case NodeTypeSwitch:
		return n.Switch != nil, "switch"
	case NodeTypeMerge:
		return n.Merge != nil, "merge"
	case NodeTypeLoop:
		return n.Loop != nil, "loop"
	case NodeTypeCode:
		return n.Sandbox != nil, "sandbox"
	case NodeTypeDatabase:
		return n.Database != nil, "database"
	default:
		return false, string(n.Type)
	}
}

// Validate checks the node's structural integrity: a known type and the
// matching configuration record present.
func (n *Node) Validate() error {
	if !n.Type.IsValid() {
		return types.NewError(types.NODE_TYPE_UNKNOWN,
			fmt.Sprintf("node %s has unknown type %q", n.ID, string(n.Type)))
	}
	if present, name := n.configForType(); !present {
		return types.NewError(types.NODE_CONFIG_INVALID,
			fmt.Sprintf("node %s is missing its %s configuration", n.ID, name))
	}
	return nil
}
