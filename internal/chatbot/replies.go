package chatbot

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wolfman30/clinic-booking/internal/appointments"
)

const (
	replyCanceled     = "Okay, I've cleared your booking details. Type \"book\" whenever you want to start again."
	replyStudentsOnly = "Sorry, only students can book appointments through the assistant."
	replyGreeting     = "Hello! I'm the clinic booking assistant. Type \"book\" to schedule an appointment."
	replyThanks       = "You're welcome! Let me know if you need to book an appointment."
	replyFarewell     = "Goodbye! Take care and stay healthy."
	replyAck          = "Alright. Type \"book\" whenever you're ready to schedule an appointment."
	replyUnknown      = "Sorry, I didn't understand that. You can say \"book an appointment\" to get started."
	replyCommitFailed = "Sorry, I couldn't save your appointment. Please start again by typing \"book\"."
	replyTryAgain     = "Sorry, something went wrong on our side. Please try again in a moment."
)

func wordPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var (
	greetingWords  = wordPattern("hi", "hello", "hey", "good morning", "good afternoon", "good evening")
	gratitudeWords = wordPattern("thanks", "thank you", "thank u", "thx", "ty", "appreciate it")
	farewellWords  = wordPattern("bye", "goodbye", "see you", "see ya")
	ackWords       = wordPattern("ok", "okay", "sure", "alright", "got it", "yes", "cool", "noted")
)

// cancelWords abort the conversation from any step. They match anywhere in
// the message so inflections like "cancelled" or "stopped" count.
var cancelWords = []string{"cancel", "stop", "reset", "wrong"}

func hasCancelWord(text string) bool {
	for _, w := range cancelWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// bookingIntentWords start a booking from idle. Service keywords count too.
var bookingIntentWords = []string{"book", "appointment", "schedule", "visit"}

func hasBookingIntent(text string) bool {
	for _, w := range bookingIntentWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	_, ok := firstKeyword(text, serviceKeywords)
	return ok
}

// smallTalk answers idle messages that are not booking requests.
func smallTalk(text string) (reply string, outcome string) {
	switch {
	case greetingWords.MatchString(text):
		return replyGreeting, OutcomeGreeting
	case gratitudeWords.MatchString(text):
		return replyThanks, OutcomeSmallTalk
	case farewellWords.MatchString(text):
		return replyFarewell, OutcomeSmallTalk
	case ackWords.MatchString(text):
		return replyAck, OutcomeSmallTalk
	}
	return replyUnknown, OutcomeUnrecognized
}

// summary lists the slots filled so far, e.g.
// "Medical Consultation on Tuesday, October 20, 2026 at 2:00 PM (Urgent)".
func summary(d BookingData, today time.Time) string {
	var b strings.Builder
	if d.ServiceType != "" {
		b.WriteString(string(d.ServiceType))
	}
	if d.Date != "" && d.valid(FieldDate, today) {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("on " + appointments.FormatDay(d.Date))
	}
	if d.Time != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("at " + appointments.FormatClock(d.Time))
	}
	if d.Urgency != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("(" + string(d.Urgency) + ")")
	}
	return b.String()
}

// question asks for f, echoing whatever is already known.
func question(f Field, d BookingData, today time.Time) string {
	var ask string
	switch f {
	case FieldService:
		ask = "What type of appointment do you need: Medical Consultation or Medical Clearance?"
	case FieldDate:
		ask = "What date would you like? You can say \"tomorrow\" or give a date like YYYY-MM-DD."
	case FieldTime:
		ask = "What time works for you? For example \"2pm\" or \"14:30\"."
	case FieldUrgency:
		ask = "Is this Urgent or Normal?"
	default:
		ask = "Briefly, what is the reason for your visit?"
	}
	if known := summary(d, today); known != "" {
		return fmt.Sprintf("Got it: %s. %s", known, ask)
	}
	return ask
}

func confirmation(d BookingData) string {
	return fmt.Sprintf("Your appointment request has been submitted!\n"+
		"Service: %s\nDate: %s\nTime: %s\nUrgency: %s\nReason: %s\n"+
		"Status: pending. The clinic staff will review it soon.",
		d.ServiceType,
		appointments.FormatDay(d.Date),
		appointments.FormatClock(d.Time),
		d.Urgency,
		d.Reason,
	)
}
