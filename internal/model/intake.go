package model

import "time"

// Workflow classifies what the client's message is asking for.
type Workflow string

const (
	WorkflowMatterCreation     Workflow = "matter_creation"
	WorkflowGeneralInquiry     Workflow = "general_inquiry"
	WorkflowAppointmentRequest Workflow = "appointment_request"
	WorkflowOther              Workflow = "other"
)

// AllWorkflows returns every valid workflow value.
func AllWorkflows() []Workflow {
	return []Workflow{
		WorkflowMatterCreation,
		WorkflowGeneralInquiry,
		WorkflowAppointmentRequest,
		WorkflowOther,
	}
}

// Urgency is the client-facing urgency of a legal matter.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Priority ranks a routing decision for downstream queues.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Action is the final routing decision for an intake.
type Action string

const (
	ActionRequestLawyerApproval Action = "request_lawyer_approval"
	ActionRequestMoreInfo       Action = "request_more_info"
	ActionEscalate              Action = "escalate"
	ActionReject                Action = "reject"
)

// AllActions returns every valid action value.
func AllActions() []Action {
	return []Action{
		ActionRequestLawyerApproval,
		ActionRequestMoreInfo,
		ActionEscalate,
		ActionReject,
	}
}

// IntakeStatus represents the current state of an intake run. Transitions are
// strictly sequential; failed is reachable only from contact_done.
type IntakeStatus string

const (
	StatusPending     IntakeStatus = "pending"
	StatusClassified  IntakeStatus = "classified"
	StatusMatterDone  IntakeStatus = "matter_done"
	StatusContactDone IntakeStatus = "contact_done"
	StatusScored      IntakeStatus = "scored"
	StatusDecided     IntakeStatus = "decided"
	StatusFailed      IntakeStatus = "failed"
)

// IntakeSession identifies one in-progress intake. It lives only for the
// duration of a single pipeline run.
type IntakeSession struct {
	SessionID string `json:"session_id"`
	TeamID    string `json:"team_id"`
	Message   string `json:"message"`
}

// WorkflowClassification is the stage 1 record.
type WorkflowClassification struct {
	Workflow   Workflow `json:"workflow"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// MatterExtraction is the stage 2 record. Complexity is clamped to [1,10]
// and EstimatedValue to >= 0 at parse time.
type MatterExtraction struct {
	MatterType     string  `json:"matter_type"`
	Urgency        Urgency `json:"urgency"`
	Complexity     int     `json:"complexity"`
	Intent         string  `json:"intent"`
	EstimatedValue float64 `json:"estimated_value"`
}

// ContactExtraction is the stage 3 record. Every field may be absent; at
// least one of Email/Phone is required for the intake to succeed.
type ContactExtraction struct {
	FullName          string `json:"full_name,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	MatterDescription string `json:"matter_description,omitempty"`
	OpposingParty     string `json:"opposing_party,omitempty"`
}

// HasChannel reports whether at least one contact channel is present.
func (c ContactExtraction) HasChannel() bool {
	return c.Email != "" || c.Phone != ""
}

// QualityAssessment is the stage 4 record. Scores are clamped to [0,100].
// RequiresHumanReview is forced true whenever CompletenessScore < 50; the
// model's stated value is advisory only.
type QualityAssessment struct {
	QualityScore        int      `json:"quality_score"`
	CompletenessScore   int      `json:"completeness_score"`
	ClarityScore        int      `json:"clarity_score"`
	RequiresHumanReview bool     `json:"requires_human_review"`
	Recommendations     []string `json:"recommendations,omitempty"`
}

// ActionDecision is the stage 5 record.
type ActionDecision struct {
	Action    Action   `json:"action"`
	Priority  Priority `json:"priority"`
	Reasoning string   `json:"reasoning"`
}

// FailureKind categorizes a recovered stage failure.
type FailureKind string

const (
	FailureModelUnavailable FailureKind = "model_unavailable"
	FailureParse            FailureKind = "parse"
	FailureLowConfidence    FailureKind = "low_confidence"
	FailureValidation       FailureKind = "validation"
)

// StageFailure records one recovered failure during a run. The presence of
// any entry with a fallback implies the result is degraded.
type StageFailure struct {
	Stage    string      `json:"stage"`
	Kind     FailureKind `json:"kind"`
	Error    string      `json:"error"`
	Fallback string      `json:"fallback,omitempty"`
}

// IntakeResult is the terminal structured output of one intake run.
// Stage records are immutable once produced: each either carries a real model
// response or the documented default for its stage, never a partial record.
type IntakeResult struct {
	SessionID     string                 `json:"session_id"`
	TeamID        string                 `json:"team_id"`
	Status        IntakeStatus           `json:"status"`
	Workflow      WorkflowClassification `json:"workflow"`
	Matter        MatterExtraction       `json:"matter"`
	Contact       ContactExtraction      `json:"contact"`
	Quality       QualityAssessment      `json:"quality"`
	Action        ActionDecision         `json:"action"`
	Degraded      bool                   `json:"degraded"`
	StageFailures []StageFailure         `json:"stage_failures,omitempty"`
	TotalTokens   int                    `json:"total_tokens"`
	TotalCost     float64                `json:"total_cost"`
}

// IntakeRun is the persisted envelope for one intake.
type IntakeRun struct {
	ID        string        `json:"id"`
	Session   IntakeSession `json:"session"`
	Status    IntakeStatus  `json:"status"`
	Result    *IntakeResult `json:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
