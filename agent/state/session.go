package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Session is the source of truth for one simulated phone call:
// caller identity, classification, transcript, and the audit trail
// of every action fired during the call.
type Session struct {
	// Identity
	ID    string `json:"id"`
	Phone string `json:"phone"`

	// Call lifecycle
	Phase          Phase          `json:"phase"`
	Classification Classification `json:"classification,omitempty"`

	// Caller payload: exactly one of Customer (directory hit) or Lead
	// (unknown caller being qualified) carries the business data.
	Customer *CustomerRecord `json:"customer,omitempty"`
	Lead     *LeadRecord     `json:"lead,omitempty"`

	Transcript []Turn         `json:"transcript,omitempty"`
	Actions    []ActionRecord `json:"actions,omitempty"`

	// LookupDegraded records that the directory was unreachable, as
	// opposed to a clean not-found. Reply text is identical either way.
	LookupDegraded bool `json:"lookup_degraded,omitempty"`

	StartedAt time.Time `json:"started_at"`
	ClosedAt  time.Time `json:"closed_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseGreeting Phase = "greeting"
	PhaseActive   Phase = "active"
	PhaseClosed   Phase = "closed"
)

type Classification string

const (
	ClassificationKnown             Classification = "known"
	ClassificationLead              Classification = "lead"
	ClassificationUnknownIncomplete Classification = "unknown_incomplete"
)

type Speaker string

const (
	SpeakerCaller Speaker = "caller"
	SpeakerAgent  Speaker = "agent"
)

type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

type ActionKind string

const (
	ActionEmail    ActionKind = "EMAIL"
	ActionCallback ActionKind = "CALLBACK"
	ActionLeadLog  ActionKind = "LEAD_LOG"
	ActionFollowUp ActionKind = "FOLLOW_UP"
)

// ActionRecord is one entry in the call's audit trail. Records are
// append-only values; nothing mutates them after creation.
type ActionRecord struct {
	Kind      ActionKind     `json:"kind"`
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Reference string         `json:"reference,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

/* --------------------------- Customer / tiers ---------------------------- */

// CustomerRecord holds directory data for a known pharmacy. It is
// immutable for the lifetime of a session once fetched.
type CustomerRecord struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	MonthlyVolume int    `json:"monthly_volume,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// Location renders "City, State" with whichever parts are present.
func (c *CustomerRecord) Location() string {
	if c == nil {
		return ""
	}
	switch {
	case c.City != "" && c.State != "":
		return c.City + ", " + c.State
	case c.City != "":
		return c.City
	case c.State != "":
		return c.State
	}
	return ""
}

// HasVolume reports whether a usable volume figure is on file.
// Zero or negative volume counts as unknown, never as "zero volume".
func (c *CustomerRecord) HasVolume() bool {
	return c != nil && c.MonthlyVolume > 0
}

type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierLow     Tier = "low"
	TierStartup Tier = "startup"
	TierUnknown Tier = "unknown"
)

// TierThresholds are the configured monthly-volume boundaries for
// personalization tiers. They are injected, never inferred.
type TierThresholds struct {
	High   int `split_words:"true" default:"10000"`
	Medium int `split_words:"true" default:"5000"`
	Low    int `split_words:"true" default:"1000"`
}

var DefaultTierThresholds = TierThresholds{High: 10000, Medium: 5000, Low: 1000}

func (t TierThresholds) normalized() TierThresholds {
	if t.High <= 0 {
		t.High = DefaultTierThresholds.High
	}
	if t.Medium <= 0 {
		t.Medium = DefaultTierThresholds.Medium
	}
	if t.Low <= 0 {
		t.Low = DefaultTierThresholds.Low
	}
	return t
}

// TierFor maps a monthly volume to its personalization tier.
// Non-positive volume means the figure is unknown.
func (t TierThresholds) TierFor(volume int) Tier {
	n := t.normalized()
	switch {
	case volume <= 0:
		return TierUnknown
	case volume >= n.High:
		return TierHigh
	case volume >= n.Medium:
		return TierMedium
	case volume >= n.Low:
		return TierLow
	}
	return TierStartup
}

/* -------------------------------- Lead ----------------------------------- */

// Required lead field names understood by LeadRecord.
const (
	LeadFieldPharmacyName  = "pharmacy_name"
	LeadFieldLocation      = "location"
	LeadFieldMonthlyVolume = "monthly_volume"
	LeadFieldEmail         = "email"
	LeadFieldContactPerson = "contact_person"
)

// DefaultRequiredLeadFields qualifies a lead once name, location, and
// volume are collected; email is valuable but not required.
var DefaultRequiredLeadFields = []string{
	LeadFieldPharmacyName,
	LeadFieldLocation,
	LeadFieldMonthlyVolume,
}

// LeadRecord accumulates qualification data for an unknown caller.
// Merging only ever adds or replaces values; a field never reverts to
// empty, so completion is monotonically non-decreasing.
type LeadRecord struct {
	Phone         string `json:"phone"`
	PharmacyName  string `json:"pharmacy_name,omitempty"`
	Location      string `json:"location,omitempty"`
	MonthlyVolume int    `json:"monthly_volume,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`

	// Logged flips once the lead has been written out, so it is never
	// recorded twice.
	Logged bool `json:"logged,omitempty"`
}

func (l *LeadRecord) filled(field string) bool {
	if l == nil {
		return false
	}
	switch field {
	case LeadFieldPharmacyName:
		return strings.TrimSpace(l.PharmacyName) != ""
	case LeadFieldLocation:
		return strings.TrimSpace(l.Location) != ""
	case LeadFieldMonthlyVolume:
		return l.MonthlyVolume > 0
	case LeadFieldEmail:
		return strings.TrimSpace(l.Email) != ""
	case LeadFieldContactPerson:
		return strings.TrimSpace(l.ContactPerson) != ""
	}
	return false
}

// Empty reports whether no qualification data has been collected yet.
func (l *LeadRecord) Empty() bool {
	fields := []string{
		LeadFieldPharmacyName,
		LeadFieldLocation,
		LeadFieldMonthlyVolume,
		LeadFieldEmail,
		LeadFieldContactPerson,
	}
	for _, f := range fields {
		if l.filled(f) {
			return false
		}
	}
	return true
}

// Completion returns the filled fraction of the required fields in
// [0, 1]. It reaches exactly 1 iff every required field has a value.
func (l *LeadRecord) Completion(required []string) float64 {
	if len(required) == 0 {
		return 1
	}
	have := 0
	for _, f := range required {
		if l.filled(f) {
			have++
		}
	}
	return float64(have) / float64(len(required))
}

// Complete reports whether every required field has a value.
func (l *LeadRecord) Complete(required []string) bool {
	for _, f := range required {
		if !l.filled(f) {
			return false
		}
	}
	return true
}

// MergePatch carries freshly extracted lead values. Empty fields are
// ignored during merge.
type MergePatch struct {
	PharmacyName  string
	Location      string
	MonthlyVolume int
	Email         string
	ContactPerson string
}

// Merge applies non-empty patch values onto the lead. It returns true
// when anything changed.
func (l *LeadRecord) Merge(p MergePatch) bool {
	if l == nil {
		return false
	}
	changed := false
	if v := strings.TrimSpace(p.PharmacyName); v != "" && v != l.PharmacyName {
		l.PharmacyName = v
		changed = true
	}
	if v := strings.TrimSpace(p.Location); v != "" && v != l.Location {
		l.Location = v
		changed = true
	}
	if p.MonthlyVolume > 0 && p.MonthlyVolume != l.MonthlyVolume {
		l.MonthlyVolume = p.MonthlyVolume
		changed = true
	}
	if v := strings.TrimSpace(p.Email); v != "" && v != l.Email {
		l.Email = v
		changed = true
	}
	if v := strings.TrimSpace(p.ContactPerson); v != "" && v != l.ContactPerson {
		l.ContactPerson = v
		changed = true
	}
	return changed
}

/* ----------------------------- Session helpers --------------------------- */

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrUnknownPhase      = errors.New("unknown session phase")
)

func NewSession(id, phone string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Phone:     phone,
		Phase:     PhaseInit,
		StartedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *Session) Closed() bool {
	return s != nil && s.Phase == PhaseClosed
}

// MarkKnown classifies the caller as a directory customer.
func (s *Session) MarkKnown(c *CustomerRecord) error {
	if s == nil {
		return errors.New("nil session")
	}
	if c == nil {
		return errors.New("nil customer record")
	}
	s.Customer = c
	s.Classification = ClassificationKnown
	return nil
}

// MarkUnknown classifies the caller as unknown and opens an empty
// lead record. degraded distinguishes a lookup failure from a clean
// not-found for observability.
func (s *Session) MarkUnknown(degraded bool) error {
	if s == nil {
		return errors.New("nil session")
	}
	if s.Classification == ClassificationKnown {
		return fmt.Errorf("%w: known session cannot revert to unknown", ErrInvalidTransition)
	}
	if s.Lead == nil {
		s.Lead = &LeadRecord{Phone: s.Phone}
	}
	s.Classification = ClassificationUnknownIncomplete
	s.LookupDegraded = degraded
	return nil
}

// PromoteLead upgrades an unknown-incomplete session to a qualified
// lead. Promotion is explicit; nothing else changes classification.
func (s *Session) PromoteLead() error {
	if s == nil {
		return errors.New("nil session")
	}
	if s.Classification != ClassificationUnknownIncomplete {
		return fmt.Errorf("%w: promote from %q", ErrInvalidTransition, s.Classification)
	}
	if s.Lead == nil {
		return fmt.Errorf("%w: promote without lead record", ErrInvalidTransition)
	}
	s.Classification = ClassificationLead
	return nil
}

func (s *Session) AppendTurn(sp Speaker, text string, now time.Time) {
	s.Transcript = append(s.Transcript, Turn{
		Speaker: sp,
		Text:    text,
		At:      now.UTC(),
	})
}

func (s *Session) AppendAction(rec ActionRecord) {
	s.Actions = append(s.Actions, rec)
}

// PharmacyName returns the best display name for the caller from
// either payload, falling back to a neutral phrase.
func (s *Session) PharmacyName() string {
	if s == nil {
		return "your pharmacy"
	}
	if s.Customer != nil && s.Customer.Name != "" {
		return s.Customer.Name
	}
	if s.Lead != nil && s.Lead.PharmacyName != "" {
		return s.Lead.PharmacyName
	}
	return "your pharmacy"
}

// EmailOnFile returns the first known email for the caller.
func (s *Session) EmailOnFile() string {
	if s == nil {
		return ""
	}
	if s.Customer != nil && s.Customer.Email != "" {
		return s.Customer.Email
	}
	if s.Lead != nil && s.Lead.Email != "" {
		return s.Lead.Email
	}
	return ""
}

// Volume returns the caller's monthly volume from either payload,
// zero when no usable figure exists.
func (s *Session) Volume() int {
	if s == nil {
		return 0
	}
	if s.Customer.HasVolume() {
		return s.Customer.MonthlyVolume
	}
	if s.Lead != nil && s.Lead.MonthlyVolume > 0 {
		return s.Lead.MonthlyVolume
	}
	return 0
}

func (s *Session) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("session id is empty")
	}
	if strings.TrimSpace(s.Phone) == "" {
		return errors.New("session phone is empty")
	}
	switch s.Phase {
	case PhaseInit, PhaseGreeting, PhaseActive, PhaseClosed:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPhase, s.Phase)
	}
	switch s.Classification {
	case "", ClassificationKnown, ClassificationLead, ClassificationUnknownIncomplete:
	default:
		return fmt.Errorf("unknown classification %q", s.Classification)
	}
	if s.Classification == ClassificationKnown && s.Customer == nil {
		return errors.New("known session has no customer record")
	}
	if (s.Classification == ClassificationLead || s.Classification == ClassificationUnknownIncomplete) && s.Lead == nil {
		return errors.New("lead session has no lead record")
	}
	if s.Phase == PhaseClosed && s.ClosedAt.IsZero() {
		return errors.New("closed session has no closed_at")
	}
	return nil
}

/* ------------------------------- Summary ---------------------------------- */

// Summary is the read-only view of a finished call.
type Summary struct {
	SessionID      string          `json:"session_id"`
	Phone          string          `json:"phone"`
	Classification Classification  `json:"classification"`
	Turns          int             `json:"turns"`
	Actions        []ActionRecord  `json:"actions,omitempty"`
	Customer       *CustomerRecord `json:"customer,omitempty"`
	Lead           *LeadRecord     `json:"lead,omitempty"`
	LeadCompletion float64         `json:"lead_completion,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	ClosedAt       time.Time       `json:"closed_at"`
}
