package state

import (
	"errors"
	"testing"
	"time"
)

func TestTierFor(t *testing.T) {
	t.Parallel()

	th := DefaultTierThresholds
	cases := []struct {
		volume int
		want   Tier
	}{
		{volume: 50000, want: TierHigh},
		{volume: 10000, want: TierHigh},
		{volume: 9999, want: TierMedium},
		{volume: 5000, want: TierMedium},
		{volume: 4999, want: TierLow},
		{volume: 1000, want: TierLow},
		{volume: 999, want: TierStartup},
		{volume: 1, want: TierStartup},
		{volume: 0, want: TierUnknown},
		{volume: -5, want: TierUnknown},
	}
	for _, tc := range cases {
		if got := th.TierFor(tc.volume); got != tc.want {
			t.Errorf("TierFor(%d) = %q, want %q", tc.volume, got, tc.want)
		}
	}
}

func TestTierForZeroThresholdsFallBack(t *testing.T) {
	t.Parallel()

	var th TierThresholds
	if got := th.TierFor(12000); got != TierHigh {
		t.Fatalf("TierFor(12000) = %q, want %q", got, TierHigh)
	}
}

func TestLeadCompletionMonotonic(t *testing.T) {
	t.Parallel()

	lead := &LeadRecord{Phone: "+15550000000"}
	required := DefaultRequiredLeadFields

	if got := lead.Completion(required); got != 0 {
		t.Fatalf("empty lead Completion() = %v, want 0", got)
	}

	lead.Merge(MergePatch{PharmacyName: "MedCare Pharmacy"})
	first := lead.Completion(required)
	if first <= 0 {
		t.Fatalf("Completion() after name = %v, want > 0", first)
	}

	// Merging an empty patch must not lose anything.
	lead.Merge(MergePatch{})
	if got := lead.Completion(required); got != first {
		t.Fatalf("Completion() after empty merge = %v, want %v", got, first)
	}

	lead.Merge(MergePatch{Location: "Chicago", MonthlyVolume: 8000})
	if got := lead.Completion(required); got != 1 {
		t.Fatalf("Completion() with all fields = %v, want 1", got)
	}
	if !lead.Complete(required) {
		t.Fatal("Complete() = false with all required fields set")
	}
}

func TestLeadCompletionRequiresEveryField(t *testing.T) {
	t.Parallel()

	lead := &LeadRecord{
		Phone:        "+15550000000",
		PharmacyName: "MedCare Pharmacy",
		Location:     "Chicago",
	}
	required := DefaultRequiredLeadFields

	if got := lead.Completion(required); got >= 1 {
		t.Fatalf("Completion() missing volume = %v, want < 1", got)
	}
	if lead.Complete(required) {
		t.Fatal("Complete() = true with missing volume")
	}
}

func TestLeadMergeNeverBlanksFields(t *testing.T) {
	t.Parallel()

	lead := &LeadRecord{
		Phone:         "+15550000000",
		PharmacyName:  "MedCare Pharmacy",
		Location:      "Chicago",
		MonthlyVolume: 8000,
		Email:         "info@medcarepharmacy.com",
	}

	changed := lead.Merge(MergePatch{PharmacyName: "  ", MonthlyVolume: -1})
	if changed {
		t.Fatal("Merge() with blank patch reported a change")
	}
	if lead.PharmacyName != "MedCare Pharmacy" || lead.MonthlyVolume != 8000 {
		t.Fatalf("Merge() blanked fields: %+v", lead)
	}
}

func TestLeadMergeOverwritesWithNewValues(t *testing.T) {
	t.Parallel()

	lead := &LeadRecord{Phone: "+15550000000", MonthlyVolume: 5000}
	if !lead.Merge(MergePatch{MonthlyVolume: 8000, Email: "info@medcarepharmacy.com"}) {
		t.Fatal("Merge() with new values reported no change")
	}
	if lead.MonthlyVolume != 8000 {
		t.Fatalf("MonthlyVolume = %d, want 8000", lead.MonthlyVolume)
	}
	if lead.Email != "info@medcarepharmacy.com" {
		t.Fatalf("Email = %q", lead.Email)
	}
}

func TestMarkUnknownThenPromote(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewSession("sess-1", "+15551234567", now)

	if err := s.MarkUnknown(false); err != nil {
		t.Fatalf("MarkUnknown() error = %v", err)
	}
	if s.Classification != ClassificationUnknownIncomplete {
		t.Fatalf("Classification = %q, want %q", s.Classification, ClassificationUnknownIncomplete)
	}
	if s.Lead == nil || s.Lead.Phone != "+15551234567" {
		t.Fatalf("Lead = %+v, want phone carried over", s.Lead)
	}

	if err := s.PromoteLead(); err != nil {
		t.Fatalf("PromoteLead() error = %v", err)
	}
	if s.Classification != ClassificationLead {
		t.Fatalf("Classification = %q, want %q", s.Classification, ClassificationLead)
	}

	// A second promotion is not a valid transition.
	if err := s.PromoteLead(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second PromoteLead() error = %v, want ErrInvalidTransition", err)
	}
}

func TestKnownNeverReverts(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-2", "+15551112222", time.Now())
	if err := s.MarkKnown(&CustomerRecord{Name: "Central Pharmacy", Phone: s.Phone}); err != nil {
		t.Fatalf("MarkKnown() error = %v", err)
	}

	if err := s.MarkUnknown(true); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("MarkUnknown() on known session error = %v, want ErrInvalidTransition", err)
	}
	if s.Classification != ClassificationKnown {
		t.Fatalf("Classification = %q after rejected revert", s.Classification)
	}
}

func TestPromoteRequiresUnknownIncomplete(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-3", "+15551112222", time.Now())
	if err := s.MarkKnown(&CustomerRecord{Name: "Central Pharmacy", Phone: s.Phone}); err != nil {
		t.Fatalf("MarkKnown() error = %v", err)
	}
	if err := s.PromoteLead(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("PromoteLead() on known session error = %v, want ErrInvalidTransition", err)
	}
}

func TestSessionValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()

	valid := NewSession("sess-4", "+15550001111", now)
	if err := valid.MarkUnknown(false); err != nil {
		t.Fatalf("MarkUnknown() error = %v", err)
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid session error = %v", err)
	}

	noID := NewSession("", "+15550001111", now)
	if err := noID.Validate(); err == nil {
		t.Fatal("Validate() accepted empty session id")
	}

	badPhase := NewSession("sess-5", "+15550001111", now)
	badPhase.Phase = Phase("limbo")
	if err := badPhase.Validate(); !errors.Is(err, ErrUnknownPhase) {
		t.Fatalf("Validate() error = %v, want ErrUnknownPhase", err)
	}

	knownNoCustomer := NewSession("sess-6", "+15550001111", now)
	knownNoCustomer.Classification = ClassificationKnown
	if err := knownNoCustomer.Validate(); err == nil {
		t.Fatal("Validate() accepted known classification without customer")
	}

	closedNoStamp := NewSession("sess-7", "+15550001111", now)
	closedNoStamp.Phase = PhaseClosed
	if err := closedNoStamp.Validate(); err == nil {
		t.Fatal("Validate() accepted closed phase without closed_at")
	}
}

func TestCustomerRecordLocation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		customer CustomerRecord
		want     string
	}{
		{customer: CustomerRecord{City: "Springfield", State: "IL"}, want: "Springfield, IL"},
		{customer: CustomerRecord{City: "Springfield"}, want: "Springfield"},
		{customer: CustomerRecord{State: "IL"}, want: "IL"},
		{customer: CustomerRecord{}, want: ""},
	}
	for _, tc := range cases {
		if got := tc.customer.Location(); got != tc.want {
			t.Errorf("Location() = %q, want %q", got, tc.want)
		}
	}
}

func TestSessionVolumePrefersCustomer(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-8", "+15550001111", time.Now())
	if got := s.Volume(); got != 0 {
		t.Fatalf("Volume() on empty session = %d, want 0", got)
	}

	s.Lead = &LeadRecord{Phone: s.Phone, MonthlyVolume: 8000}
	if got := s.Volume(); got != 8000 {
		t.Fatalf("Volume() from lead = %d, want 8000", got)
	}

	s.Customer = &CustomerRecord{Name: "Central Pharmacy", Phone: s.Phone, MonthlyVolume: 50000}
	if got := s.Volume(); got != 50000 {
		t.Fatalf("Volume() with customer = %d, want 50000", got)
	}
}

func TestAppendTurnStampsUTC(t *testing.T) {
	t.Parallel()

	s := NewSession("sess-9", "+15550001111", time.Now())
	loc := time.FixedZone("UTC+7", 7*60*60)
	s.AppendTurn(SpeakerCaller, "hello", time.Date(2025, 6, 1, 12, 0, 0, 0, loc))

	if len(s.Transcript) != 1 {
		t.Fatalf("Transcript length = %d, want 1", len(s.Transcript))
	}
	turn := s.Transcript[0]
	if turn.Speaker != SpeakerCaller || turn.Text != "hello" {
		t.Fatalf("turn = %+v", turn)
	}
	if turn.At.Location() != time.UTC {
		t.Fatalf("turn.At zone = %v, want UTC", turn.At.Location())
	}
}
