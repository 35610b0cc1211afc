package funnel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"elite-gym/internal/leads"
	"elite-gym/internal/models"
	"elite-gym/internal/observability/metrics"
	"elite-gym/internal/whatsapp"
)

// DefaultTypingDelay is the pause before each assistant message appears.
const DefaultTypingDelay = 800 * time.Millisecond

// Dispatcher hands a finished lead to the outbound sink.
type Dispatcher interface {
	Dispatch(ctx context.Context, env leads.Envelope)
}

// Options wire a Session to its collaborators.
type Options struct {
	Destination string
	TypingDelay time.Duration
	Scheduler   Scheduler
	Dispatcher  Dispatcher
	Observer    Observer
	Metrics     *metrics.LeadMetrics
}

// step is one entry of the scripted queue: either an assistant line that
// appears after the typing delay, or an action that runs as soon as every
// earlier step has finished.
type step struct {
	say string
	do  func()
}

// Session is one visitor's run through the funnel.
//
// Assistant lines are drained from a serial queue by a single-flight timer:
// at most one delay is pending and the next one is only scheduled once the
// previous line has been appended. Close bumps the generation so a timer
// that already fired for a discarded run appends nothing.
type Session struct {
	id   string
	opts Options

	mu         sync.Mutex
	state      State
	messages   []Message
	lead       Lead
	queue      []step
	composing  bool
	pending    Timer
	gen        uint64
	handoffURL string
	dispatches int
	evicted    bool
}

func NewSession(id string, opts Options) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = DefaultTypingDelay
	}
	return &Session{id: id, opts: opts, state: StateGreeting}
}

func (s *Session) ID() string { return s.id }

// Start runs the greeting: two assistant lines, then the automatic move to
// collecting_name. It does nothing if the conversation already began.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateGreeting || len(s.messages) > 0 || s.busy() {
		return
	}
	s.opts.Metrics.ObserveTransition(string(StateGreeting))
	s.enqueue(
		step{say: lineWelcome},
		step{say: lineAskName},
		step{do: func() { s.setState(StateCollectingName) }},
	)
}

// SubmitText takes the visitor's typed answer for the name or phone step.
func (s *Session) SubmitText(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy() {
		return ErrBusy
	}

	switch s.state {
	case StateCollectingName:
		s.appendMessage(SenderVisitor, value)
		s.lead.Name = value
		s.setState(StateCollectingPhone)
		s.enqueue(
			step{say: fmt.Sprintf(lineGreetName, value)},
			step{say: lineAskPhone},
		)
	case StateCollectingPhone:
		s.appendMessage(SenderVisitor, value)
		s.lead.Phone = value
		s.setState(StateCollectingInterest)
		s.enqueue(
			step{say: linePhoneDone},
			step{say: lineAskInterest},
		)
	default:
		return ErrUnexpectedInput
	}
	return nil
}

// SelectInterest records the chosen topic, completes the funnel and queues
// the closing lines around the hand-off.
func (s *Session) SelectInterest(option string) error {
	if !isInterestOption(option) {
		return ErrInvalidSelection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollectingInterest {
		return ErrUnexpectedInput
	}
	if s.busy() {
		return ErrBusy
	}

	s.appendMessage(SenderVisitor, option)
	s.lead.Interest = option
	s.setState(StateComplete)
	name := s.lead.Name
	s.enqueue(
		step{say: fmt.Sprintf(lineConfirm, option)},
		step{say: fmt.Sprintf(lineSending, name)},
		step{do: s.dispatch},
		step{say: lineDone},
	)
	return nil
}

// Resend hands the completed lead off again.
func (s *Session) Resend() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete {
		return ErrUnexpectedInput
	}
	if s.busy() {
		return ErrBusy
	}
	s.dispatch()
	return nil
}

// Close resets the session to an empty greeting. Pending lines are dropped
// and a delay that is already running is cancelled or, if it fires anyway,
// ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.emit(Event{Type: EventReset, State: s.state})
}

func (s *Session) reset() {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.queue = nil
	s.composing = false
	s.messages = nil
	s.lead = Lead{}
	s.state = StateGreeting
	s.handoffURL = ""
	s.dispatches = 0
}

// Snapshot copies the session's visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.id,
		State:      s.state,
		Messages:   append([]Message{}, s.messages...),
		Composing:  s.busy(),
		Lead:       s.lead,
		HandoffURL: s.handoffURL,
		Dispatches: s.dispatches,
	}
	if snap.Composing {
		return snap
	}
	switch s.state {
	case StateCollectingName:
		snap.Input = &InputPrompt{Type: "text", Placeholder: placeholderName}
	case StateCollectingPhone:
		snap.Input = &InputPrompt{Type: "tel", Placeholder: placeholderPhone}
	case StateCollectingInterest:
		snap.Options = InterestOptions()
	case StateComplete:
		snap.Actions = []string{ActionResend, ActionClose}
	}
	return snap
}

func (s *Session) wasEvicted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

func (s *Session) busy() bool {
	return s.composing || len(s.queue) > 0
}

func (s *Session) setState(state State) {
	s.state = state
	s.opts.Metrics.ObserveTransition(string(state))
	s.emit(Event{Type: EventState, State: state})
}

func (s *Session) appendMessage(sender Sender, text string) {
	msg := Message{Sender: sender, Text: text}
	s.messages = append(s.messages, msg)
	s.emit(Event{Type: EventMessage, State: s.state, Message: &msg})
}

func (s *Session) enqueue(steps ...step) {
	s.queue = append(s.queue, steps...)
	if !s.composing {
		s.pump()
	}
}

// pump runs queued actions until it reaches a line, then schedules that
// line and returns. Caller holds mu.
func (s *Session) pump() {
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if next.do != nil {
			next.do()
			continue
		}

		s.composing = true
		s.emit(Event{Type: EventTyping, State: s.state, Composing: true})
		gen := s.gen
		text := next.say
		s.pending = s.opts.Scheduler.AfterFunc(s.opts.TypingDelay, func() {
			s.deliver(gen, text)
		})
		return
	}
	s.emit(Event{Type: EventTyping, State: s.state, Composing: false})
}

func (s *Session) deliver(gen uint64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}
	s.pending = nil
	s.composing = false
	s.appendMessage(SenderAssistant, text)
	s.pump()
}

func (s *Session) dispatch() {
	text := s.lead.Text()
	s.handoffURL = whatsapp.DeepLink(s.opts.Destination, text)
	s.dispatches++
	if s.opts.Dispatcher == nil {
		return
	}
	s.opts.Dispatcher.Dispatch(context.Background(), leads.Envelope{
		SessionID:   s.id,
		Kind:        models.DispatchKindLead,
		Destination: s.opts.Destination,
		Text:        text,
	})
}
