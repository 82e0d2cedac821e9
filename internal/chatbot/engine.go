package chatbot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-booking/internal/identity"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

var chatbotTracer = otel.Tracer("clinic.internal.chatbot")

// Turn outcomes, used for logs and metrics.
const (
	OutcomeCanceled     = "canceled"
	OutcomeRefused      = "refused"
	OutcomeGreeting     = "greeting"
	OutcomeSmallTalk    = "small_talk"
	OutcomeUnrecognized = "unrecognized"
	OutcomeAsked        = "asked"
	OutcomeBooked       = "booked"
	OutcomeCommitFailed = "commit_failed"
	OutcomeStoreError   = "store_error"
)

// Reply is what the assistant says back for one message.
type Reply struct {
	Text           string `json:"response"`
	RequiresAction bool   `json:"requires_action"`
}

// Engine runs the booking conversation. It is safe for concurrent use;
// turns for the same user are serialised through the session store lock.
type Engine struct {
	sessions  SessionStore
	committer Committer
	extractor *Extractor
	logger    *logging.Logger
	metrics   *metrics.ChatbotMetrics
	tracer    trace.Tracer
	now       func() time.Time
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithClock sets the clock used for "tomorrow" and past-date checks.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMetrics records turn outcomes and commits.
func WithMetrics(m *metrics.ChatbotMetrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine wires an engine to its session store and committer.
func NewEngine(sessions SessionStore, committer Committer, logger *logging.Logger, opts ...EngineOption) *Engine {
	if sessions == nil {
		panic("chatbot: session store required")
	}
	if committer == nil {
		panic("chatbot: committer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		sessions:  sessions,
		committer: committer,
		extractor: NewExtractor(),
		logger:    logger,
		tracer:    chatbotTracer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// turn is the pure result of applying one message to a state.
type turn struct {
	next    State
	reply   string
	outcome string
	// reset drops the stored state instead of saving next.
	reset bool
	// commit is set when the booking is complete and must be stored.
	commit *BookingRequest
}

// advance applies one message to state without touching storage.
func (e *Engine) advance(caller identity.Identity, state State, message string, now time.Time) turn {
	in := NewInput(message, now, state.Step)

	if hasCancelWord(in.Text) {
		return turn{next: NewState(), reply: replyCanceled, outcome: OutcomeCanceled, reset: true}
	}
	if !caller.Role.CanBook() {
		return turn{next: state, reply: replyStudentsOnly, outcome: OutcomeRefused}
	}

	found := e.extractor.Extract(in)
	next := state
	next.Data.Merge(found)

	if state.Step == StepIdle && !hasBookingIntent(in.Text) && found.IsEmpty() {
		reply, outcome := smallTalk(in.Text)
		return turn{next: state, reply: reply, outcome: outcome}
	}

	if field, missing := next.Data.firstMissing(now); missing {
		next.Step = field.askingStep()
		return turn{next: next, reply: question(field, next.Data, now), outcome: OutcomeAsked + "_" + field.String()}
	}

	next.Step = StepSaving
	req := newBookingRequest(caller, next.Data)
	return turn{next: next, outcome: OutcomeBooked, commit: &req}
}

// HandleMessage processes one user message and returns the reply. It never
// fails: storage problems become a generic apology.
func (e *Engine) HandleMessage(ctx context.Context, caller identity.Identity, message string) Reply {
	ctx, span := e.tracer.Start(ctx, "chatbot.handle_message")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("clinic.user_id", caller.UserID),
		attribute.String("clinic.role", string(caller.Role)),
	)

	unlock, err := e.sessions.Lock(ctx, caller.UserID)
	if err != nil {
		span.RecordError(err)
		return e.storeFailure(caller, "lock", err)
	}
	defer unlock()

	state, err := e.sessions.Load(ctx, caller.UserID)
	if err != nil {
		span.RecordError(err)
		return e.storeFailure(caller, "load", err)
	}

	t := e.advance(caller, state, message, e.now())

	if t.commit != nil {
		if err := e.committer.Commit(ctx, *t.commit); err != nil {
			span.RecordError(err)
			e.logger.Error("chatbot booking commit failed", "user_id", caller.UserID, "error", err)
			e.metrics.ObserveCommit(false)
			t.reply, t.outcome = replyCommitFailed, OutcomeCommitFailed
		} else {
			e.metrics.ObserveCommit(true)
			t.reply = confirmation(t.next.Data)
		}
		t.next, t.reset = NewState(), true
	}

	switch {
	case t.reset:
		err = e.sessions.Delete(ctx, caller.UserID)
	case t.next != state:
		err = e.sessions.Save(ctx, caller.UserID, t.next)
	}
	if err != nil {
		span.RecordError(err)
		e.logger.Error("chatbot session write failed", "user_id", caller.UserID, "error", err)
	}

	span.SetAttributes(
		attribute.String("clinic.chatbot.step", string(t.next.Step)),
		attribute.String("clinic.chatbot.outcome", t.outcome),
	)
	e.metrics.ObserveTurn(t.outcome)
	e.logger.Debug("chatbot turn",
		"user_id", caller.UserID,
		"step", t.next.Step,
		"outcome", t.outcome,
	)
	return Reply{Text: t.reply}
}

// Reset discards the user's conversation, the same as saying "cancel".
func (e *Engine) Reset(ctx context.Context, caller identity.Identity) error {
	unlock, err := e.sessions.Lock(ctx, caller.UserID)
	if err != nil {
		return err
	}
	defer unlock()
	return e.sessions.Delete(ctx, caller.UserID)
}

func (e *Engine) storeFailure(caller identity.Identity, op string, err error) Reply {
	e.logger.Error("chatbot session store failed", "user_id", caller.UserID, "op", op, "error", err)
	e.metrics.ObserveTurn(OutcomeStoreError)
	return Reply{Text: replyTryAgain}
}
