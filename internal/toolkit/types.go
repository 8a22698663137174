// Package toolkit holds the shared data model for tool descriptors,
// invocations, results, task plans, and sessions used across the
// registry, dispatcher, planner, and providers.
package toolkit

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ParamType enumerates the JSON-Schema-ish types a tool parameter may declare.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamArray   ParamType = "array"
	ParamObject  ParamType = "object"
)

// ParamSpec describes a single named parameter of a tool.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
}

// ToolDescriptor is the immutable metadata record for one registered tool.
// Qualified names are of the form "<provider>_<local>" and are unique
// across the registry.
type ToolDescriptor struct {
	Name            string
	Description     string
	Provider        string
	Category        string
	Version         string
	Params          []ParamSpec
	ParameterSchema json.RawMessage
	Timeout         time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
	AuthRequired    bool
}

// ToolInvocation is the ephemeral request bundle created by the dispatcher
// for a single call.
type ToolInvocation struct {
	ToolName      string
	Args          map[string]any
	CorrelationID uuid.UUID
	Deadline      time.Time
}

// ResultKind classifies the outcome of a ToolResult.
type ResultKind string

const (
	ResultSuccess         ResultKind = "success"
	ResultError           ResultKind = "error"
	ResultPartial         ResultKind = "partial"
	ResultValidationError ResultKind = "validation_error"
	ResultTimeout         ResultKind = "timeout"
)

// ToolResult is the outcome record returned by the dispatcher to whoever
// invoked it.
type ToolResult struct {
	Kind             ResultKind
	Payload          any
	Message          string
	ElapsedTime      time.Duration
	RetryCount       int
	ValidationErrors []string
	Metadata         map[string]any
	Timestamp        time.Time
}

// Succeeded reports whether the result represents a non-error outcome.
func (r ToolResult) Succeeded() bool {
	return r.Kind == ResultSuccess || r.Kind == ResultPartial
}

// TaskStep is one step of a TaskPlan.
type TaskStep struct {
	ID          string
	Description string
	ToolName    string
	Params      map[string]any
	Completed   bool
	Result      *ToolResult
	DependsOn   []string
}

// PlanStatus is the lifecycle state of a TaskPlan.
type PlanStatus string

const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
	PlanFailed     PlanStatus = "failed"
)

// TaskPlan is an ordered program of TaskSteps produced by the planner.
type TaskPlan struct {
	ID          uuid.UUID
	Description string
	Steps       []*TaskStep
	Status      PlanStatus
	CurrentStep int
	CreatedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// AllCompleted reports whether every step in the plan is marked completed.
func (p *TaskPlan) AllCompleted() bool {
	for _, s := range p.Steps {
		if !s.Completed {
			return false
		}
	}
	return true
}

// TodoStatus is the lifecycle state of a TodoItem.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
	TodoFailed     TodoStatus = "failed"
	TodoCancelled  TodoStatus = "cancelled"
)

// TodoItem is one unit of tracked work inside an AgentSession. Ids are
// provider-assigned sequential strings ("todo_1", "todo_2", ...), not
// UUIDs, matching the monitoring provider's id scheme.
type TodoItem struct {
	ID         string
	Content    string
	ActiveForm string
	Status     TodoStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Notes      string
	Duration   *time.Duration
}

// AgentSession groups TodoItems and aggregate counters for one logical run.
type AgentSession struct {
	ID             string
	CreatedAt      time.Time
	LastActivityAt time.Time
	Todos          map[string]*TodoItem
	nextTodoSeq    int
	TotalTasks     int
	CompletedTasks int
	FailedTasks    int
}

// NextTodoID returns the next sequential todo id for this session
// ("todo_1", "todo_2", ...) and advances the internal counter.
func (s *AgentSession) NextTodoID() string {
	s.nextTodoSeq++
	return "todo_" + strconv.Itoa(s.nextTodoSeq)
}

// ResetTodoSequence zeroes the todo id counter, used when the session's
// todo map is wiped and replaced (create_todos, clear_todos).
func (s *AgentSession) ResetTodoSequence() {
	s.nextTodoSeq = 0
}

// PluginValidationStatus is the outcome of the static safety check.
type PluginValidationStatus string

const (
	PluginValid    PluginValidationStatus = "valid"
	PluginRejected PluginValidationStatus = "rejected"
)

// PluginRecord tracks one discovered plugin source file.
type PluginRecord struct {
	ID               uuid.UUID
	Path             string
	ContentHash      string
	ValidationStatus PluginValidationStatus
	RejectReason     string
	DiscoveredAt     time.Time
}

// SSHConnectionEntry tracks one pooled SSH session.
type SSHConnectionEntry struct {
	Host     string
	User     string
	LastUsed time.Time
	InUse    bool
}

// ValidationRule is a named rule set consumed by the output validator.
type ValidationRule struct {
	Name               string
	ExpectedPatterns   []string
	ErrorPatterns      []string
	WarningPatterns    []string
	RequiredElements   []string
	ForbiddenElements  []string
}
