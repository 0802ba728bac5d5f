package workflow

import (
	"github.com/flowdeck-io/flowdeck/internal/types"
)

// IssueSeverity separates violations that block saving from advisory
// findings.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding produced by linting a workflow document.
type Issue struct {
	NodeID   types.ID      `json:"node_id"`
	NodeName string        `json:"node_name"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// LintDocument validates every node of a workflow document and returns the
// collected issues. Structural problems and tier-1 configuration violations
// carry error severity; advisory findings carry warning severity.
func LintDocument(doc *Document) []Issue {
	var issues []Issue

	for i := range doc.Nodes {
		node := &doc.Nodes[i]

		if err := node.Validate(); err != nil {
			issues = append(issues, issue(node, SeverityError, err.Error()))
			continue
		}

		switch node.Type {
		case NodeTypeSwitch:
			for _, v := range node.Switch.Validate() {
				issues = append(issues, issue(node, SeverityError, v))
			}
		case NodeTypeMerge:
			for _, v := range node.Merge.Validate() {
				issues = append(issues, issue(node, SeverityError, v))
			}
		case NodeTypeCode:
			for _, v := range ValidateSandboxConfig(*node.Sandbox) {
				issues = append(issues, issue(node, SeverityError, v))
			}
		case NodeTypeDatabase:
			result := ValidateConnection(*node.Database, node.DatabaseType)
			for _, e := range result.Errors {
				issues = append(issues, issue(node, SeverityError, e))
			}
			for _, w := range result.Warnings {
				issues = append(issues, issue(node, SeverityWarning, w))
			}
		}
	}

	return issues
}

// HasErrors reports whether any issue in the list blocks saving.
func HasErrors(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

func issue(node *Node, severity IssueSeverity, message string) Issue {
	return Issue{
		NodeID:   node.ID,
		NodeName: node.Name,
		Severity: severity,
		Message:  message,
	}
}
