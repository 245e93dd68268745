package intent

import (
	"slices"
	"testing"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

func TestAnalyzeIntentRouting(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		text           string
		class          statex.Classification
		wantIntent     contractx.Intent
		wantConfidence contractx.Confidence
	}{
		{
			name:           "pricing email with address",
			text:           "Can you send me pricing info at a@b.com?",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentRequestPricingEmail,
			wantConfidence: contractx.ConfidenceHigh,
		},
		{
			name:           "email request without address",
			text:           "Could you email the details over?",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentRequestPricingEmail,
			wantConfidence: contractx.ConfidenceMedium,
		},
		{
			name:           "callback with time hint",
			text:           "Please call me back tomorrow morning",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentRequestCallback,
			wantConfidence: contractx.ConfidenceHigh,
		},
		{
			name:           "bare callback ask",
			text:           "Can someone call me?",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentRequestCallback,
			wantConfidence: contractx.ConfidenceMedium,
		},
		{
			name:           "email outranks callback",
			text:           "Email me the pricing or call me, whichever is faster",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentRequestPricingEmail,
			wantConfidence: contractx.ConfidenceLow,
		},
		{
			name:           "one shot lead introduction",
			text:           "This is MedCare Pharmacy, Chicago, we fill 8000 prescriptions per month",
			class:          statex.ClassificationUnknownIncomplete,
			wantIntent:     contractx.IntentProvideLeadInfo,
			wantConfidence: contractx.ConfidenceHigh,
		},
		{
			name:           "partial lead introduction",
			text:           "Hi, this is MedCare Pharmacy in downtown Chicago",
			class:          statex.ClassificationUnknownIncomplete,
			wantIntent:     contractx.IntentProvideLeadInfo,
			wantConfidence: contractx.ConfidenceMedium,
		},
		{
			name:           "lead chatter from known caller is not lead intake",
			text:           "We fill 8000 prescriptions per month these days",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentUnknown,
			wantConfidence: contractx.ConfidenceLow,
		},
		{
			name:           "greeting",
			text:           "Hello",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentGeneralInquiry,
			wantConfidence: contractx.ConfidenceLow,
		},
		{
			name:           "pricing question",
			text:           "What are your rates?",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentGeneralInquiry,
			wantConfidence: contractx.ConfidenceMedium,
		},
		{
			name:           "unclassifiable",
			text:           "hmm well alright then",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentUnknown,
			wantConfidence: contractx.ConfidenceLow,
		},
		{
			name:           "city name alone is not a greeting",
			text:           "Chicago",
			class:          statex.ClassificationKnown,
			wantIntent:     contractx.IntentUnknown,
			wantConfidence: contractx.ConfidenceLow,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Analyze(tc.text, tc.class)
			if got.Intent != tc.wantIntent {
				t.Errorf("Analyze(%q).Intent = %q, want %q", tc.text, got.Intent, tc.wantIntent)
			}
			if got.Confidence != tc.wantConfidence {
				t.Errorf("Analyze(%q).Confidence = %q, want %q", tc.text, got.Confidence, tc.wantConfidence)
			}
		})
	}
}

func TestAnalyzeSuggestedActions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text  string
		class statex.Classification
		want  []statex.ActionKind
	}{
		{
			text:  "Send me pricing info at a@b.com",
			class: statex.ClassificationKnown,
			want:  []statex.ActionKind{statex.ActionEmail},
		},
		{
			text:  "Please call me back tomorrow",
			class: statex.ClassificationKnown,
			want:  []statex.ActionKind{statex.ActionCallback, statex.ActionFollowUp},
		},
		{
			text:  "This is MedCare Pharmacy in Chicago",
			class: statex.ClassificationUnknownIncomplete,
			want:  []statex.ActionKind{statex.ActionLeadLog},
		},
		{
			text:  "Hello there",
			class: statex.ClassificationKnown,
			want:  nil,
		},
	}
	for _, tc := range cases {
		got := Analyze(tc.text, tc.class)
		if !slices.Equal(got.SuggestedActions, tc.want) {
			t.Errorf("Analyze(%q).SuggestedActions = %v, want %v", tc.text, got.SuggestedActions, tc.want)
		}
	}
}

func TestAnalyzeMentionsPricing(t *testing.T) {
	t.Parallel()

	if got := Analyze("What are your rates?", statex.ClassificationKnown); !got.MentionsPricing {
		t.Error("MentionsPricing = false for rates question")
	}
	if got := Analyze("Please call me back", statex.ClassificationKnown); got.MentionsPricing {
		t.Error("MentionsPricing = true for plain callback ask")
	}
}

func TestExtractEntities(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want contractx.Entities
	}{
		{
			name: "comma separated introduction",
			text: "This is MedCare Pharmacy, Chicago, we fill 8000 prescriptions per month",
			want: contractx.Entities{PharmacyName: "MedCare Pharmacy", Location: "Chicago", MonthlyVolume: 8000},
		},
		{
			name: "prepositional location",
			text: "Hi, this is MedCare Pharmacy in downtown Chicago",
			want: contractx.Entities{PharmacyName: "MedCare Pharmacy", Location: "Chicago"},
		},
		{
			name: "city and state",
			text: "We're located in Austin, TX",
			want: contractx.Entities{Location: "Austin, TX"},
		},
		{
			name: "intro phrase without suffix",
			text: "I'm calling from Riverside Health Mart",
			want: contractx.Entities{PharmacyName: "Riverside Health Mart"},
		},
		{
			name: "volume with thousands separator",
			text: "We dispense about 7,500 scripts monthly",
			want: contractx.Entities{MonthlyVolume: 7500},
		},
		{
			name: "volume with k suffix",
			text: "our volume is around 12k per month",
			want: contractx.Entities{MonthlyVolume: 12000},
		},
		{
			name: "email address",
			text: "You can reach me at bob@citydrugs.com.",
			want: contractx.Entities{Email: "bob@citydrugs.com"},
		},
		{
			name: "dashed phone number",
			text: "My direct line is 555-123-4567",
			want: contractx.Entities{Phone: "555-123-4567"},
		},
		{
			name: "parenthesized phone number",
			text: "Reach the front desk at (312) 555-0199",
			want: contractx.Entities{Phone: "(312) 555-0199"},
		},
		{
			name: "time hint prefers longest phrase",
			text: "Give me a ring tomorrow morning",
			want: contractx.Entities{TimeHint: "tomorrow morning"},
		},
		{
			name: "volume number is not a phone number",
			text: "we fill 8000 prescriptions",
			want: contractx.Entities{MonthlyVolume: 8000},
		},
		{
			name: "nothing extractable",
			text: "Thanks, that all sounds good",
			want: contractx.Entities{},
		},
		{
			name: "greeting is not a place",
			text: "Hello",
			want: contractx.Entities{},
		},
		{
			name: "weekday hint without location",
			text: "Sounds good, Tuesday works",
			want: contractx.Entities{TimeHint: "tuesday"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ExtractEntities(tc.text); got != tc.want {
				t.Errorf("ExtractEntities(%q) = %+v, want %+v", tc.text, got, tc.want)
			}
		})
	}
}

func TestConfidenceFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		matches int
		want    contractx.Confidence
	}{
		{matches: 0, want: contractx.ConfidenceLow},
		{matches: 1, want: contractx.ConfidenceLow},
		{matches: 2, want: contractx.ConfidenceMedium},
		{matches: 3, want: contractx.ConfidenceHigh},
		{matches: 7, want: contractx.ConfidenceHigh},
	}
	for _, tc := range cases {
		if got := confidenceFor(tc.matches); got != tc.want {
			t.Errorf("confidenceFor(%d) = %q, want %q", tc.matches, got, tc.want)
		}
	}
}
