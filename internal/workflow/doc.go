// Package workflow implements the decision core for Flowdeck's visual
// automation-workflow builder: the logic that determines control flow and
// result shape for action nodes on the canvas.
//
// The package contains five components:
//
//   - Switch condition evaluation (condition.go): resolves field paths against
//     a workflow state snapshot and evaluates routing conditions in
//     first-match or all-match mode.
//   - Merge synchronization (merge.go): tracks concurrent branch completions
//     for Merge nodes, decides when a merge may proceed (wait-all / wait-any /
//     wait-n), and combines branch results (array / object / first / last),
//     racing an optional cancellable timeout against branch arrival.
//   - Loop aggregation (loop.go): folds per-iteration outcomes into a summary
//     with success/failure counts and an optional collected results array.
//   - Sandbox policy classification (sandbox.go): classifies a Code node's
//     access permissions into strict/relaxed/open and validates its resource
//     limits.
//   - Connection security validation (connection.go): validates database
//     connection configuration, classifies its security level, and masks
//     secrets for display. No connection is ever opened.
//
// All components are pure and safe for concurrent use except the merge
// synchronizer, which owns the only mutable shared state in the package. Each
// merge instance is internally synchronized; resolution is idempotent and
// fires exactly once per instance.
//
// Runtime outcomes are captured as data rather than raised as errors: an
// invalid regex in a "matches" condition evaluates to false, a failed loop
// iteration becomes an IterationResult with Success=false, and a merge
// timeout yields either a partial combination or an explicit timeout failure
// depending on configuration.
package workflow
