package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	contractx "github.com/pharmesol/salesline/agent/contract"
	statex "github.com/pharmesol/salesline/agent/state"
)

// Keyword sets for intent routing. Single words are matched against
// the message's token set; phrases are matched as substrings.
var (
	emailKeywords    = []string{"email", "send me", "mail me", "information", "details", "send"}
	callbackKeywords = []string{"callback", "call back", "call me", "schedule", "call", "phone"}
	pricingKeywords  = []string{"pricing", "price", "cost", "rates", "volume", "discount", "competitive"}
	greetingKeywords = []string{"hello", "hi", "hey", "good morning", "good afternoon"}
	questionWords    = []string{"what", "how", "when", "where", "why", "who"}

	leadIndicators = []string{"pharmacy", "calling from", "i'm from", "im from", "located", "we fill", "prescriptions"}
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// Pharmacy names are recognized by suffix ("MedCare Pharmacy") or
	// by an introduction phrase ("calling from Central Drugs").
	pharmacySuffixPattern = regexp.MustCompile(`\b([A-Z][\w&'.\-]*(?:\s+[A-Z][\w&'.\-]*)*\s+(?:Pharmacy|Pharmacies|Drugs?|Drugstore|Apothecary))\b`)
	pharmacyIntroPattern  = regexp.MustCompile(`(?:(?i:calling from|this is|i'm from|we are|we're))\s+([A-Z][\w&'.\-]*(?:\s+[A-Z][\w&'.\-]*)+)`)

	locationPrepPattern   = regexp.MustCompile(`\b(?:in|at|located in|based in|from)\s+(?:(?:downtown|greater|metro)\s+)?([A-Z][\w.\-]*(?:\s+[A-Z][\w.\-]*)*(?:,\s*[A-Z]{2})?)`)
	locationCityStatePtrn = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*,\s*[A-Z]{2})\b`)

	volumeUnitPattern = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)(k?)\s*(?:prescriptions?|scripts?|rx)\b`)
	volumeVerbPattern = regexp.MustCompile(`(?i)\b(?:volume|fill|filling|dispense|dispensing)\D{0,20}?(\d{1,3}(?:,\d{3})+|\d+)(k?)\b`)
)

// Longest first so "tomorrow morning" wins over "morning".
var timeHints = []string{
	"tomorrow morning", "tomorrow afternoon", "tomorrow evening",
	"this morning", "this afternoon", "this evening",
	"next week", "tomorrow", "today",
	"monday", "tuesday", "wednesday", "thursday", "friday",
	"morning", "afternoon", "evening",
}

// Analyze classifies one caller message and extracts whatever lead
// data it carries. Classification is pure string work; no model call.
func Analyze(text string, class statex.Classification) contractx.Analysis {
	lower := strings.ToLower(text)
	tokens := tokenize(lower)
	entities := ExtractEntities(text)

	emailMatches := countMatches(lower, tokens, emailKeywords)
	if entities.Email != "" {
		emailMatches++
	}
	callbackMatches := countMatches(lower, tokens, callbackKeywords)
	if entities.TimeHint != "" && callbackMatches > 0 {
		callbackMatches++
	}
	pricingMatches := countMatches(lower, tokens, pricingKeywords)

	analysis := contractx.Analysis{
		Entities:        entities,
		MentionsPricing: pricingMatches > 0,
	}

	switch {
	case emailMatches > 0:
		analysis.Intent = contractx.IntentRequestPricingEmail
		analysis.Confidence = confidenceFor(emailMatches)
		analysis.SuggestedActions = []statex.ActionKind{statex.ActionEmail}
	case callbackMatches > 0:
		analysis.Intent = contractx.IntentRequestCallback
		analysis.Confidence = confidenceFor(callbackMatches)
		analysis.SuggestedActions = []statex.ActionKind{statex.ActionCallback, statex.ActionFollowUp}
	case class == statex.ClassificationUnknownIncomplete && providesLeadInfo(lower, tokens, entities):
		analysis.Intent = contractx.IntentProvideLeadInfo
		analysis.Confidence = confidenceFor(entityCount(entities))
		analysis.SuggestedActions = []statex.ActionKind{statex.ActionLeadLog}
	case isGeneralInquiry(lower, tokens, pricingMatches):
		analysis.Intent = contractx.IntentGeneralInquiry
		generalMatches := countMatches(lower, tokens, greetingKeywords) + pricingMatches
		if strings.Contains(lower, "?") || countMatches(lower, tokens, questionWords) > 0 {
			generalMatches++
		}
		analysis.Confidence = confidenceFor(generalMatches)
	default:
		analysis.Intent = contractx.IntentUnknown
		analysis.Confidence = contractx.ConfidenceLow
	}
	return analysis
}

// ExtractEntities pulls structured values out of free text. Every
// field is best-effort; a miss leaves the zero value.
func ExtractEntities(text string) contractx.Entities {
	var e contractx.Entities

	if m := emailPattern.FindString(text); m != "" {
		e.Email = strings.TrimRight(m, ".")
	}
	if m := phonePattern.FindString(text); m != "" {
		e.Phone = strings.TrimSpace(m)
	}

	e.PharmacyName = extractPharmacyName(text)
	e.Location = extractLocation(text, e.PharmacyName)
	e.MonthlyVolume = extractVolume(text)

	lower := strings.ToLower(text)
	for _, hint := range timeHints {
		if strings.Contains(lower, hint) {
			e.TimeHint = hint
			break
		}
	}
	return e
}

func extractPharmacyName(text string) string {
	if m := pharmacySuffixPattern.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if m := pharmacyIntroPattern.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractLocation(text, pharmacyName string) string {
	for _, m := range locationPrepPattern.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if candidate == "" || candidate == pharmacyName {
			continue
		}
		if pharmacySuffixPattern.MatchString(candidate) {
			continue
		}
		return candidate
	}
	if m := locationCityStatePtrn.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	if pharmacyName == "" {
		// Without a name in the same message, a short capitalized
		// segment ("Thanks", "Hello") is not evidence of a place.
		return ""
	}
	// Comma-separated self introductions: "MedCare Pharmacy, Chicago,
	// 8000 prescriptions/month".
	for _, segment := range strings.Split(text, ",") {
		candidate := strings.TrimSpace(segment)
		if candidate == "" || candidate == pharmacyName {
			continue
		}
		if looksLikePlace(candidate) && !pharmacySuffixPattern.MatchString(candidate) {
			return candidate
		}
	}
	return ""
}

// looksLikePlace accepts short capitalized phrases with no digits.
func looksLikePlace(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if !unicode.IsUpper(r[0]) {
			return false
		}
		if strings.ContainsFunc(w, unicode.IsDigit) {
			return false
		}
	}
	return true
}

func extractVolume(text string) int {
	for _, p := range []*regexp.Regexp{volumeUnitPattern, volumeVerbPattern} {
		m := p.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil || n <= 0 {
			continue
		}
		if len(m) > 2 && strings.EqualFold(m[2], "k") {
			n *= 1000
		}
		return n
	}
	return 0
}

func providesLeadInfo(lower string, tokens map[string]bool, e contractx.Entities) bool {
	if entityCount(e) > 0 {
		return true
	}
	return countMatches(lower, tokens, leadIndicators) > 0
}

func isGeneralInquiry(lower string, tokens map[string]bool, pricingMatches int) bool {
	if pricingMatches > 0 {
		return true
	}
	if countMatches(lower, tokens, greetingKeywords) > 0 {
		return true
	}
	return strings.Contains(lower, "?") || countMatches(lower, tokens, questionWords) > 0
}

func entityCount(e contractx.Entities) int {
	n := 0
	if e.PharmacyName != "" {
		n++
	}
	if e.Location != "" {
		n++
	}
	if e.MonthlyVolume > 0 {
		n++
	}
	if e.Email != "" {
		n++
	}
	if e.Phone != "" {
		n++
	}
	return n
}

func confidenceFor(matches int) contractx.Confidence {
	switch {
	case matches >= 3:
		return contractx.ConfidenceHigh
	case matches == 2:
		return contractx.ConfidenceMedium
	}
	return contractx.ConfidenceLow
}

func countMatches(lower string, tokens map[string]bool, phrases []string) int {
	n := 0
	for _, phrase := range phrases {
		if strings.Contains(phrase, " ") || strings.Contains(phrase, "'") {
			if strings.Contains(lower, phrase) {
				n++
			}
			continue
		}
		if tokens[phrase] {
			n++
		}
	}
	return n
}

func tokenize(lower string) map[string]bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}
