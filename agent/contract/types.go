package contract

import (
	"time"

	statex "github.com/pharmesol/salesline/agent/state"
)

// Intent is the routing decision for one caller message.
type Intent string

const (
	IntentRequestPricingEmail Intent = "REQUEST_PRICING_EMAIL"
	IntentRequestCallback     Intent = "REQUEST_CALLBACK"
	IntentProvideLeadInfo     Intent = "PROVIDE_LEAD_INFO"
	IntentGeneralInquiry      Intent = "GENERAL_INQUIRY"
	IntentUnknown             Intent = "UNKNOWN_INTENT"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Entities are the values extracted from a single message. Absent
// values are zero; extraction never invents data.
type Entities struct {
	PharmacyName  string `json:"pharmacy_name,omitempty"`
	Location      string `json:"location,omitempty"`
	MonthlyVolume int    `json:"monthly_volume,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	TimeHint      string `json:"time_hint,omitempty"`
}

// Analysis is the full read on one caller message: what they want,
// how sure we are, and what concrete values the message carried.
type Analysis struct {
	Intent     Intent     `json:"intent"`
	Confidence Confidence `json:"confidence"`
	Entities   Entities   `json:"entities"`
	// SuggestedActions lists the action kinds the intent maps to, in
	// dispatch order. Advisory; the dispatcher makes the final call.
	SuggestedActions []statex.ActionKind `json:"suggested_actions,omitempty"`
	// MentionsPricing marks pricing vocabulary even when the message
	// routes to another intent, so replies can stay on topic.
	MentionsPricing bool `json:"mentions_pricing,omitempty"`
}

/* --------------------------- Executor payloads ---------------------------- */

// EmailRequest asks for a pricing/information email to one recipient.
type EmailRequest struct {
	Recipient    string
	PharmacyName string
	Tier         statex.Tier
	Topic        string
}

// CallbackRequest schedules a sales callback. When is resolved by the
// scheduler when zero.
type CallbackRequest struct {
	Phone        string
	PharmacyName string
	TimeHint     string
	When         time.Time
}

// LeadRequest records a qualified lead with an external system.
type LeadRequest struct {
	Lead statex.LeadRecord
}

// FollowUpRequest creates a follow-up task after a scheduled contact.
type FollowUpRequest struct {
	PharmacyName string
	Phone        string
	Reason       string
	Due          time.Time
}

// ActionResult is what an executor reports back. Reference carries the
// external identifier when the system issues one.
type ActionResult struct {
	Success   bool
	Message   string
	Reference string
	Payload   map[string]any
}

/* ---------------------------- Model completion ---------------------------- */

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a plain chat completion: system framing plus
// conversation so far. The completer owns model choice and limits.
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
}
