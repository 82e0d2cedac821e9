package chatbot

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/appointments"
)

// Input is one message as seen by the field extractors.
type Input struct {
	// Raw is the trimmed message with its original casing.
	Raw string
	// Text is Raw lower-cased.
	Text string
	// Today is the engine clock at the time of the turn.
	Today time.Time
	// Step is the step the conversation was in before this message.
	Step Step
}

// NewInput prepares a message for extraction.
func NewInput(message string, today time.Time, step Step) Input {
	raw := strings.TrimSpace(message)
	return Input{Raw: raw, Text: strings.ToLower(raw), Today: today, Step: step}
}

// FieldExtractor looks for one slot in a message. ok is false when the
// message says nothing usable about that slot.
type FieldExtractor func(in Input) (value string, ok bool)

type fieldRule struct {
	field   Field
	extract FieldExtractor
}

// Extractor runs a fixed, ordered list of field extractors over a message.
type Extractor struct {
	rules []fieldRule
}

// NewExtractor returns the extractor with the built-in rules.
func NewExtractor() *Extractor {
	return &Extractor{rules: []fieldRule{
		{field: FieldService, extract: ExtractService},
		{field: FieldUrgency, extract: ExtractUrgency},
		{field: FieldDate, extract: ExtractDate},
		{field: FieldTime, extract: ExtractTime},
		{field: FieldReason, extract: ExtractReason},
	}}
}

// Extract returns the slots found in the message. Unset slots are empty.
func (e *Extractor) Extract(in Input) BookingData {
	var found BookingData
	for _, rule := range e.rules {
		value, ok := rule.extract(in)
		if !ok {
			continue
		}
		switch rule.field {
		case FieldService:
			found.ServiceType = appointments.ServiceType(value)
		case FieldDate:
			found.Date = value
		case FieldTime:
			found.Time = value
		case FieldUrgency:
			found.Urgency = appointments.Urgency(value)
		case FieldReason:
			found.Reason = value
		}
	}
	return found
}

type keyword struct {
	word  string
	value string
}

var serviceKeywords = []keyword{
	{"consultation", string(appointments.ServiceConsultation)},
	{"consult", string(appointments.ServiceConsultation)},
	{"check-up", string(appointments.ServiceConsultation)},
	{"checkup", string(appointments.ServiceConsultation)},
	{"clearance", string(appointments.ServiceClearance)},
	{"certificate", string(appointments.ServiceClearance)},
}

var urgencyKeywords = []keyword{
	{"urgent", string(appointments.UrgencyUrgent)},
	{"normal", string(appointments.UrgencyNormal)},
}

func firstKeyword(text string, table []keyword) (string, bool) {
	for _, k := range table {
		if strings.Contains(text, k.word) {
			return k.value, true
		}
	}
	return "", false
}

// ExtractService maps service keywords to a service type.
func ExtractService(in Input) (string, bool) {
	return firstKeyword(in.Text, serviceKeywords)
}

// ExtractUrgency maps "urgent" or "normal" to an urgency.
func ExtractUrgency(in Input) (string, bool) {
	return firstKeyword(in.Text, urgencyKeywords)
}

var isoDatePattern = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

// ExtractDate understands "tomorrow" and the first YYYY-MM-DD in the message.
// Impossible dates and days before today are ignored.
func ExtractDate(in Input) (string, bool) {
	if strings.Contains(in.Text, "tomorrow") {
		return appointments.StartOfDay(in.Today).AddDate(0, 0, 1).Format(appointments.DateLayout), true
	}
	match := isoDatePattern.FindString(in.Text)
	if match == "" {
		return "", false
	}
	date, err := appointments.ParseDate(match, in.Today)
	if err != nil {
		return "", false
	}
	return date.Format(appointments.DateLayout), true
}

var (
	twelveHourPattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clockPattern      = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	meridiemSuffix    = regexp.MustCompile(`^\s*(am|pm)\b`)
)

// ExtractTime reads "2pm", "2:30 pm" or "14:30" and returns HH:MM:00.
// A 12-hour match takes precedence; out-of-range values leave the slot unset.
func ExtractTime(in Input) (string, bool) {
	if m := twelveHourPattern.FindStringSubmatch(in.Text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour > 12 || minute > 59 {
			return "", false
		}
		switch {
		case m[3] == "pm" && hour < 12:
			hour += 12
		case m[3] == "am" && hour == 12:
			hour = 0
		}
		return clock(hour, minute), true
	}

	for _, loc := range clockPattern.FindAllStringSubmatchIndex(in.Text, -1) {
		if meridiemSuffix.MatchString(in.Text[loc[1]:]) {
			continue
		}
		hour, _ := strconv.Atoi(in.Text[loc[2]:loc[3]])
		minute, _ := strconv.Atoi(in.Text[loc[4]:loc[5]])
		if hour > 23 || minute > 59 {
			return "", false
		}
		return clock(hour, minute), true
	}
	return "", false
}

func clock(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format(appointments.TimeLayout)
}

var reasonMarkers = []string{"because", "reason is"}

// ExtractReason takes the text after "because" or "reason is". While the
// conversation is waiting for a reason the whole message is the reason.
func ExtractReason(in Input) (string, bool) {
	if in.Step == StepAskingReason {
		return in.Raw, in.Raw != ""
	}

	first, start := -1, 0
	for _, marker := range reasonMarkers {
		if idx := strings.Index(in.Text, marker); idx >= 0 && (first < 0 || idx < first) {
			first, start = idx, idx+len(marker)
		}
	}
	if first < 0 {
		return "", false
	}

	// Offsets into Text only line up with Raw when lower-casing kept byte lengths.
	source := in.Raw
	if len(source) != len(in.Text) {
		source = in.Text
	}
	reason := strings.TrimSpace(strings.TrimLeft(source[start:], " \t:,-"))
	return reason, reason != ""
}
