// YAML parsing for workflow documents saved by the canvas property panel.
//
// A workflow document lists the action nodes whose decision logic this
// package implements. Only the fields the decision core consumes appear
// here; presentational attributes (positions, badges, collapsed state) are
// stripped before the document reaches this layer.
//
// # YAML structure example
//
//	name: Order routing
//	nodes:
//	  - id: 3b241101-e2bb-4255-8caf-4136c566a962
//	    type: switch
//	    name: Route by age
//	    switch:
//	      mode: first_match
//	      default: fallback
//	      conditions:
//	        - field: age
//	          operator: gte
//	          value: 18
//	          output: adult
//
//	  - id: 9f8b8f0e-43a1-4e11-a1c4-8a2f5be4d1aa
//	    type: merge
//	    name: Join branches
//	    merge:
//	      mode: wait_n
//	      wait_count: 2
//	      combine: object
//	      branch_keys: [left, right]
//	      timeout:
//	        enabled: true
//	        ms: 5000
//	        behavior: continue
package workflow

import (
	"fmt"
	"os"

	"github.com/flowdeck-io/flowdeck/internal/types"
	"gopkg.in/yaml.v3"
)

// Document is a parsed workflow document: the decision-relevant slice of what
// the builder persists.
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Nodes       []Node `json:"nodes"`
}

// yamlDocument is the top-level YAML structure of a workflow document.
type yamlDocument struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Nodes       []yamlNode `yaml:"nodes"`
}

type yamlNode struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
	Name string `yaml:"name"`

	Switch   *yamlSwitch   `yaml:"switch"`
	Merge    *yamlMerge    `yaml:"merge"`
	Loop     *yamlLoop     `yaml:"loop"`
	Sandbox  *yamlSandbox  `yaml:"sandbox"`
	Database *yamlDatabase `yaml:"database"`
}

type yamlSwitch struct {
	Mode       string          `yaml:"mode"`
	Default    string          `yaml:"default"`
	Conditions []yamlCondition `yaml:"conditions"`
}

type yamlCondition struct {
	ID       string `yaml:"id"`
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    any    `yaml:"value"`
	Output   string `yaml:"output"`
}

type yamlMerge struct {
	Mode       string       `yaml:"mode"`
	WaitCount  int          `yaml:"wait_count"`
	Combine    string       `yaml:"combine"`
	BranchKeys []string     `yaml:"branch_keys"`
	Timeout    *yamlTimeout `yaml:"timeout"`
}

type yamlTimeout struct {
	Enabled  bool   `yaml:"enabled"`
	Millis   int64  `yaml:"ms"`
	Behavior string `yaml:"behavior"`
}

type yamlLoop struct {
	Collect        bool   `yaml:"collect"`
	AggregationKey string `yaml:"aggregation_key"`
}

type yamlSandbox struct {
	NetworkAccess    bool `yaml:"network_access"`
	FileSystemAccess bool `yaml:"file_system_access"`
	MemoryLimitMB    int  `yaml:"memory_limit_mb"`
	TimeLimitMS      int  `yaml:"time_limit_ms"`
}

type yamlDatabase struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connection_string"`
	CredentialRef    string `yaml:"credential_ref"`
	PoolSize         *int   `yaml:"pool_size"`
}

// ParseDocument parses a workflow document from YAML bytes and converts it
// into typed nodes. Unknown node types and missing per-type configuration
// are reported as parse errors.
func ParseDocument(data []byte) (*Document, error) {
	var raw yamlDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to parse workflow YAML", err)
	}

	doc := &Document{
		Name:        raw.Name,
		Description: raw.Description,
		Nodes:       make([]Node, 0, len(raw.Nodes)),
	}

	for i, yn := range raw.Nodes {
		node, err := convertNode(yn)
		if err != nil {
			return nil, types.WrapError(types.NODE_CONFIG_INVALID,
				fmt.Sprintf("node %d (%s)", i, yn.Name), err)
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	return doc, nil
}

// LoadDocument reads and parses a workflow document from a file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to read workflow file %s", path), err)
	}
	return ParseDocument(data)
}

// convertNode converts one YAML node into a typed Node, generating an ID
// when the document omits one.
func convertNode(yn yamlNode) (Node, error) {
	id, err := nodeID(yn.ID)
	if err != nil {
		return Node{}, err
	}

	node := Node{
		ID:   id,
		Type: NodeType(yn.Type),
		Name: yn.Name,
	}

	switch node.Type {
	case NodeTypeSwitch:
		if yn.Switch == nil {
			return Node{}, fmt.Errorf("switch node requires a switch section")
		}
		cfg, err := convertSwitch(*yn.Switch)
		if err != nil {
			return Node{}, err
		}
		node.Switch = cfg
	case NodeTypeMerge:
		if yn.Merge == nil {
			return Node{}, fmt.Errorf("merge node requires a merge section")
		}
		node.Merge = convertMerge(*yn.Merge)
	case NodeTypeLoop:
		if yn.Loop == nil {
			return Node{}, fmt.Errorf("loop node requires a loop section")
		}
		node.Loop = &LoopResultsConfig{
			Collect:        yn.Loop.Collect,
			AggregationKey: yn.Loop.AggregationKey,
		}
	case NodeTypeCode:
		if yn.Sandbox == nil {
			return Node{}, fmt.Errorf("code node requires a sandbox section")
		}
		node.Sandbox = &SandboxConfig{
			NetworkAccess:    yn.Sandbox.NetworkAccess,
			FileSystemAccess: yn.Sandbox.FileSystemAccess,
			MemoryLimitMB:    yn.Sandbox.MemoryLimitMB,
			TimeLimitMS:      yn.Sandbox.TimeLimitMS,
		}
	case NodeTypeDatabase:
		if yn.Database == nil {
			return Node{}, fmt.Errorf("database node requires a database section")
		}
		node.Database = &DatabaseConnection{
			ConnectionString: yn.Database.ConnectionString,
			CredentialRef:    yn.Database.CredentialRef,
			PoolSize:         yn.Database.PoolSize,
		}
		node.DatabaseType = DatabaseType(yn.Database.Type)
	default:
		return Node{}, fmt.Errorf("unknown node type %q", yn.Type)
	}

	return node, nil
}

func convertSwitch(ys yamlSwitch) (*SwitchNodeConfig, error) {
	cfg := &SwitchNodeConfig{
		Mode:        EvaluationMode(ys.Mode),
		DefaultPort: ys.Default,
		Conditions:  make([]SwitchCondition, 0, len(ys.Conditions)),
	}

	for i, yc := range ys.Conditions {
		id, err := nodeID(yc.ID)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		cfg.Conditions = append(cfg.Conditions, SwitchCondition{
			ID:         id,
			Field:      yc.Field,
			Operator:   ConditionOperator(yc.Operator),
			Value:      yc.Value,
			OutputPort: yc.Output,
		})
	}

	return cfg, nil
}

func convertMerge(ym yamlMerge) *MergeConfig {
	cfg := &MergeConfig{
		Mode:            MergeMode(ym.Mode),
		WaitCount:       ym.WaitCount,
		CombineStrategy: CombineStrategy(ym.Combine),
		BranchKeys:      ym.BranchKeys,
	}
	if ym.Timeout != nil {
		cfg.Timeout = MergeTimeout{
			Enabled:  ym.Timeout.Enabled,
			Millis:   ym.Timeout.Millis,
			Behavior: TimeoutBehavior(ym.Timeout.Behavior),
		}
	}
	return cfg
}

// nodeID parses an explicit id or generates a fresh one when absent.
func nodeID(raw string) (types.ID, error) {
	if raw == "" {
		return types.NewID(), nil
	}
	return types.ParseID(raw)
}
