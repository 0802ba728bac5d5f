package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/flowdeck-io/flowdeck/internal/types"
)

// MergeMode is the completion threshold a Merge node requires before
// proceeding.
type MergeMode string

const (
	// MergeWaitAll proceeds once every expected branch has completed.
	MergeWaitAll MergeMode = "wait_all"
	// MergeWaitAny proceeds as soon as one branch has completed.
	MergeWaitAny MergeMode = "wait_any"
	// MergeWaitN proceeds once WaitCount branches (clamped to the expected
	// total) have completed.
	MergeWaitN MergeMode = "wait_n"
)

// String returns the string representation of the merge mode.
func (m MergeMode) String() string {
	return string(m)
}

// IsValid checks if the merge mode is a supported value.
func (m MergeMode) IsValid() bool {
	switch m {
	case MergeWaitAll, MergeWaitAny, MergeWaitN:
		return true
	default:
		return false
	}
}

// CombineStrategy is the rule for shaping multiple branch outputs into one
// value.
type CombineStrategy string

const (
	CombineArray  CombineStrategy = "array"
	CombineObject CombineStrategy = "object"
	CombineFirst  CombineStrategy = "first"
	CombineLast   CombineStrategy = "last"
)

// String returns the string representation of the combine strategy.
func (s CombineStrategy) String() string {
	return string(s)
}

// IsValid checks if the combine strategy is a supported value.
func (s CombineStrategy) IsValid() bool {
	switch s {
	case CombineArray, CombineObject, CombineFirst, CombineLast:
		return true
	default:
		return false
	}
}

// TimeoutBehavior selects what a Merge node does when its deadline elapses
// before the completion threshold is reached.
type TimeoutBehavior string

const (
	// TimeoutContinue combines whatever branches have completed so far.
	TimeoutContinue TimeoutBehavior = "continue"
	// TimeoutError resolves with a timeout failure and does not combine.
	TimeoutError TimeoutBehavior = "error"
)

// String returns the string representation of the timeout behavior.
func (b TimeoutBehavior) String() string {
	return string(b)
}

// IsValid checks if the timeout behavior is a supported value.
func (b TimeoutBehavior) IsValid() bool {
	switch b {
	case TimeoutContinue, TimeoutError:
		return true
	default:
		return false
	}
}

// MergeTimeout configures the optional deadline racing against branch
// completions. Without a timeout the merge instance blocks indefinitely
// awaiting branch completions.
type MergeTimeout struct {
	Enabled  bool            `json:"enabled"`
	Millis   int64           `json:"ms"`
	Behavior TimeoutBehavior `json:"behavior"`
}

// Duration returns the deadline as a time.Duration.
func (t MergeTimeout) Duration() time.Duration {
	return time.Duration(t.Millis) * time.Millisecond
}

// MergeConfig is the typed configuration record of a Merge node, authored
// through the property panel and persisted as part of the workflow document.
type MergeConfig struct {
	Mode            MergeMode       `json:"mode"`
	WaitCount       int             `json:"wait_count,omitempty"`
	CombineStrategy CombineStrategy `json:"combine_strategy"`
	BranchKeys      []string        `json:"branch_keys,omitempty"`
	Timeout         MergeTimeout    `json:"timeout"`
}

// Validate returns a list of configuration violations. An empty list means
// the config can be saved and executed.
func (c MergeConfig) Validate() []string {
	var violations []string

	if !c.Mode.IsValid() {
		violations = append(violations, fmt.Sprintf("unknown merge mode %q", string(c.Mode)))
	}
	if c.Mode == MergeWaitN && c.WaitCount < 1 {
		violations = append(violations, "wait_n mode requires wait_count of at least 1")
	}
	if !c.CombineStrategy.IsValid() {
		violations = append(violations, fmt.Sprintf("unknown combine strategy %q", string(c.CombineStrategy)))
	}
	if c.Timeout.Enabled {
		if c.Timeout.Millis <= 0 {
			violations = append(violations, "timeout is enabled but ms is not positive")
		}
		if !c.Timeout.Behavior.IsValid() {
			violations = append(violations, fmt.Sprintf("unknown timeout behavior %q", string(c.Timeout.Behavior)))
		}
	}

	return violations
}

// BranchState tracks one concurrent path of workflow execution feeding into a
// Merge node. It is created when the merge instance begins waiting, mutated
// exactly once when its branch completes, and destroyed when the instance
// resolves or the workflow run ends.
type BranchState struct {
	BranchID     string `json:"branch_id"`
	Completed    bool   `json:"completed"`
	Result       any    `json:"result,omitempty"`
	ArrivalOrder int    `json:"arrival_order"`
}

// ShouldProceed reports whether a merge with the given mode and wait count
// has met its completion threshold. For wait_n the wait count is clamped to
// [1, total].
func ShouldProceed(mode MergeMode, waitCount int, branches []BranchState) bool {
	total := len(branches)
	completed := 0
	for _, b := range branches {
		if b.Completed {
			completed++
		}
	}

	switch mode {
	case MergeWaitAll:
		return completed == total
	case MergeWaitAny:
		return completed >= 1
	case MergeWaitN:
		return completed >= clamp(waitCount, 1, total)
	default:
		return false
	}
}

// CombineResults shapes the completed branches into a single value according
// to the combine strategy. Branches are taken in arrival order regardless of
// the order of the input slice.
//
//   - array: ordered list of results, one per completed branch
//   - object: map of branchKeys[i] (falling back to the branch id) to result
//   - first: result of the earliest arrival
//   - last: result of the latest arrival
func CombineResults(strategy CombineStrategy, branchKeys []string, branches []BranchState) any {
	completed := make([]BranchState, 0, len(branches))
	for _, b := range branches {
		if b.Completed {
			completed = append(completed, b)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].ArrivalOrder < completed[j].ArrivalOrder
	})

	switch strategy {
	case CombineObject:
		combined := make(map[string]any, len(completed))
		for i, b := range completed {
			key := b.BranchID
			if i < len(branchKeys) && branchKeys[i] != "" {
				key = branchKeys[i]
			}
			combined[key] = b.Result
		}
		return combined
	case CombineFirst:
		if len(completed) == 0 {
			return nil
		}
		return completed[0].Result
	case CombineLast:
		if len(completed) == 0 {
			return nil
		}
		return completed[len(completed)-1].Result
	default: // CombineArray
		results := make([]any, 0, len(completed))
		for _, b := range completed {
			results = append(results, b.Result)
		}
		return results
	}
}

// MergeOutcome is the single resolution produced by a merge instance: either
// a combined value, a partial combination after a continue-timeout, or a
// timeout failure.
type MergeOutcome struct {
	Value          any
	Combined       bool
	TimedOut       bool
	CompletedCount int
	Err            error
}

// MergeInstance tracks branch completions for one Merge node activation.
// All mutation happens under the instance mutex; resolution fires exactly
// once, via whichever comes first of the completion threshold and the
// optional deadline. Branch-completion events after resolution are ignored.
type MergeInstance struct {
	id     types.ID
	config MergeConfig

	mu          sync.Mutex
	branches    map[string]*BranchState
	nextArrival int
	resolved    bool
	timer       *time.Timer
	done        chan MergeOutcome

	logger *slog.Logger
}

// ID returns the merge instance identifier.
func (mi *MergeInstance) ID() types.ID {
	return mi.id
}

// Config returns the merge configuration this instance was created with.
func (mi *MergeInstance) Config() MergeConfig {
	return mi.config
}

// Resolved reports whether the instance has already produced its outcome.
func (mi *MergeInstance) Resolved() bool {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return mi.resolved
}

// Branches returns a snapshot of the instance's branch states.
func (mi *MergeInstance) Branches() []BranchState {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return mi.branchSnapshotLocked()
}

// branchSnapshotLocked copies branch states. Must be called with the
// instance mutex held.
func (mi *MergeInstance) branchSnapshotLocked() []BranchState {
	snapshot := make([]BranchState, 0, len(mi.branches))
	for _, b := range mi.branches {
		snapshot = append(snapshot, *b)
	}
	return snapshot
}

// CompleteBranch records that a branch has finished with the given result and
// re-evaluates the completion threshold. Completions for unknown branches,
// duplicate completions for the same branch, and completions after the
// instance has resolved are ignored.
func (mi *MergeInstance) CompleteBranch(branchID string, result any) {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	if mi.resolved {
		mi.logger.Debug("Ignoring branch completion after merge resolution",
			"merge_id", mi.id,
			"branch_id", branchID,
		)
		return
	}

	branch, ok := mi.branches[branchID]
	if !ok {
		mi.logger.Warn("Ignoring completion for unknown branch",
			"merge_id", mi.id,
			"branch_id", branchID,
		)
		return
	}
	if branch.Completed {
		// Duplicate completion events are idempotent.
		mi.logger.Debug("Ignoring duplicate branch completion",
			"merge_id", mi.id,
			"branch_id", branchID,
		)
		return
	}

	branch.Completed = true
	branch.Result = result
	branch.ArrivalOrder = mi.nextArrival
	mi.nextArrival++

	snapshot := mi.branchSnapshotLocked()
	if ShouldProceed(mi.config.Mode, mi.config.WaitCount, snapshot) {
		mi.resolveLocked(MergeOutcome{
			Value:          CombineResults(mi.config.CombineStrategy, mi.config.BranchKeys, snapshot),
			Combined:       true,
			CompletedCount: completedCount(snapshot),
		})
	}
}

// Await blocks until the instance resolves or the context is cancelled.
// There is no polling: resolution is event-driven.
func (mi *MergeInstance) Await(ctx context.Context) (MergeOutcome, error) {
	select {
	case outcome := <-mi.done:
		return outcome, nil
	case <-ctx.Done():
		return MergeOutcome{}, types.WrapError(types.MERGE_AWAIT_CANCELLED,
			fmt.Sprintf("merge %s await cancelled", mi.id), ctx.Err())
	}
}

// resolveLocked marks the instance resolved, cancels the deadline timer, and
// delivers the outcome. Must be called with the instance mutex held; callers
// must have checked resolved beforehand.
func (mi *MergeInstance) resolveLocked(outcome MergeOutcome) {
	mi.resolved = true
	if mi.timer != nil {
		mi.timer.Stop()
	}

	mi.logger.Debug("Merge instance resolved",
		"merge_id", mi.id,
		"timed_out", outcome.TimedOut,
		"completed_count", outcome.CompletedCount,
	)

	mi.done <- outcome
}

// fireTimeout is the deadline callback. It loses the race silently when the
// instance resolved first.
func (mi *MergeInstance) fireTimeout() {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	if mi.resolved {
		return
	}

	snapshot := mi.branchSnapshotLocked()
	outcome := MergeOutcome{
		TimedOut:       true,
		CompletedCount: completedCount(snapshot),
	}

	switch mi.config.Timeout.Behavior {
	case TimeoutContinue:
		outcome.Value = CombineResults(mi.config.CombineStrategy, mi.config.BranchKeys, snapshot)
		outcome.Combined = true
	default:
		outcome.Err = types.NewError(types.MERGE_TIMEOUT,
			fmt.Sprintf("merge %s timed out after %s with %d/%d branches complete",
				mi.id, mi.config.Timeout.Duration(), outcome.CompletedCount, len(snapshot)))
	}

	mi.resolveLocked(outcome)
}

// completedCount counts completed branches in a snapshot.
func completedCount(branches []BranchState) int {
	n := 0
	for _, b := range branches {
		if b.Completed {
			n++
		}
	}
	return n
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MergeCoordinator owns all live merge instances of a workflow run, keyed by
// merge-instance id. The map is guarded by its own lock; each instance is
// internally synchronized.
type MergeCoordinator struct {
	mu        sync.RWMutex
	instances map[types.ID]*MergeInstance
	logger    *slog.Logger

	defaultTimeout time.Duration
	maxLive        int
}

// CoordinatorOption is a functional option for configuring MergeCoordinator.
type CoordinatorOption func(*MergeCoordinator)

// WithLogger configures the coordinator to use the specified structured
// logger for merge lifecycle logging.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(mc *MergeCoordinator) {
		mc.logger = logger
	}
}

// WithDefaultTimeout supplies a fallback deadline for merge configs that
// enable a timeout without specifying ms. An explicit ms always wins.
func WithDefaultTimeout(d time.Duration) CoordinatorOption {
	return func(mc *MergeCoordinator) {
		mc.defaultTimeout = d
	}
}

// WithMaxLiveInstances bounds the number of merge instances the coordinator
// holds at once. Begin fails once the bound is reached until Release frees
// capacity. 0 means unbounded.
func WithMaxLiveInstances(n int) CoordinatorOption {
	return func(mc *MergeCoordinator) {
		mc.maxLive = n
	}
}

// NewMergeCoordinator creates a new MergeCoordinator with the specified
// options. The default logger is slog.Default().
func NewMergeCoordinator(opts ...CoordinatorOption) *MergeCoordinator {
	coordinator := &MergeCoordinator{
		instances: make(map[types.ID]*MergeInstance),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(coordinator)
	}

	return coordinator
}

// Begin creates a merge instance that waits for the given branches and arms
// the deadline timer when the config enables one. It fails if an instance
// with the same id is already live.
func (mc *MergeCoordinator) Begin(id types.ID, config MergeConfig, branchIDs []string) (*MergeInstance, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.instances[id]; exists {
		return nil, types.NewError(types.MERGE_INSTANCE_EXISTS,
			fmt.Sprintf("merge instance %s already exists", id))
	}
	if mc.maxLive > 0 && len(mc.instances) >= mc.maxLive {
		return nil, types.NewError(types.MERGE_LIMIT_EXCEEDED,
			fmt.Sprintf("coordinator is at its limit of %d live merge instances", mc.maxLive))
	}

	if config.Timeout.Enabled && config.Timeout.Millis <= 0 && mc.defaultTimeout > 0 {
		config.Timeout.Millis = mc.defaultTimeout.Milliseconds()
	}

	branches := make(map[string]*BranchState, len(branchIDs))
	for _, branchID := range branchIDs {
		branches[branchID] = &BranchState{BranchID: branchID}
	}

	instance := &MergeInstance{
		id:       id,
		config:   config,
		branches: branches,
		done:     make(chan MergeOutcome, 1),
		logger:   mc.logger,
	}

	if config.Timeout.Enabled {
		instance.timer = time.AfterFunc(config.Timeout.Duration(), instance.fireTimeout)
	}

	mc.instances[id] = instance

	mc.logger.Debug("Merge instance created",
		"merge_id", id,
		"mode", config.Mode,
		"branch_count", len(branchIDs),
		"timeout_enabled", config.Timeout.Enabled,
	)

	return instance, nil
}

// CompleteBranch reports a branch completion to a live merge instance.
func (mc *MergeCoordinator) CompleteBranch(id types.ID, branchID string, result any) error {
	instance, ok := mc.Get(id)
	if !ok {
		return types.NewError(types.MERGE_INSTANCE_UNKNOWN,
			fmt.Sprintf("merge instance %s not found", id))
	}

	instance.CompleteBranch(branchID, result)
	return nil
}

// Get returns the live merge instance with the given id.
func (mc *MergeCoordinator) Get(id types.ID) (*MergeInstance, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	instance, ok := mc.instances[id]
	return instance, ok
}

// Release removes a merge instance from the coordinator, cancelling its
// deadline timer if still armed. Called when the instance has resolved or
// the workflow run ends.
func (mc *MergeCoordinator) Release(id types.ID) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if instance, ok := mc.instances[id]; ok {
		if instance.timer != nil {
			instance.timer.Stop()
		}
		delete(mc.instances, id)
	}
}

// Len returns the number of live merge instances.
func (mc *MergeCoordinator) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.instances)
}
