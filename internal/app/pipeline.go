package app

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ApologyText is what the assistant says when the remote call fails. It is
// committed to the store exactly like a real response.
const ApologyText = "Sorry, something went wrong. Please try again."

// Phases of one submission. Failed absorbs from Sending; everything else
// flows forward and ends back at Idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseEnsuringSession
	PhaseSending
	PhaseStreaming
	PhaseCommitting
	PhaseFailed
)

// Validation rejections. Callers treat these as silent no-ops: no state
// changed, nothing to surface beyond disabled controls.
var (
	ErrEmptyInput = errors.New("empty input")
	ErrOffline    = errors.New("offline")
	ErrBusy       = errors.New("submission in progress")
)

type EventKind int

const (
	// EventUserAppended fires after the optimistic user-message append.
	EventUserAppended EventKind = iota
	// EventReveal fires per streamed token with the visible prefix so far.
	EventReveal
	// EventDone fires after the final overwrite and store commit.
	EventDone
	// EventFailed fires after the apology message is appended and committed.
	EventFailed
)

type Event struct {
	Kind    EventKind
	Content string
}

// Pipeline orchestrates one submission end to end: validate, ensure a
// session, optimistic append, remote call, simulated streaming, durable
// commit. Only one submission may be in flight at a time.
type Pipeline struct {
	ctrl     *Controller
	store    *SessionStore
	client   *ChatClient
	streamer *Streamer
	online   func() bool
	userID   string
	log      *Logger

	mu    sync.Mutex
	phase Phase
}

func NewPipeline(ctrl *Controller, store *SessionStore, client *ChatClient, streamer *Streamer, online func() bool, userID string, log *Logger) *Pipeline {
	if online == nil {
		online = func() bool { return true }
	}
	if userID == "" {
		userID = "default_user"
	}
	return &Pipeline{
		ctrl:     ctrl,
		store:    store,
		client:   client,
		streamer: streamer,
		online:   online,
		userID:   userID,
		log:      log,
	}
}

// Phase reports where the current (or last) submission is.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Busy reports whether a submission is in flight.
func (p *Pipeline) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase != PhaseIdle
}

func (p *Pipeline) setPhase(ph Phase) {
	p.mu.Lock()
	p.phase = ph
	p.mu.Unlock()
}

// begin is the Validating gate: it rejects bad input, offline state, and
// concurrent submissions, and claims the pipeline otherwise.
func (p *Pipeline) begin(input string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhaseIdle {
		return ErrBusy
	}
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}
	if !p.online() {
		return ErrOffline
	}
	p.phase = PhaseValidating
	return nil
}

// Submit runs one full submission. emit may be nil. The returned error is
// only ever a validation rejection or a context cancellation; remote
// failures are recovered locally as the apology message.
func (p *Pipeline) Submit(ctx context.Context, input string, emit func(Event)) error {
	if emit == nil {
		emit = func(Event) {}
	}
	if err := p.begin(input); err != nil {
		return err
	}
	defer p.setPhase(PhaseIdle)

	p.setPhase(PhaseEnsuringSession)
	if p.ctrl.ActiveID() == "" {
		p.ctrl.NewConversation()
	}
	sessionID := p.ctrl.ActiveID()

	firstMessage := p.ctrl.MessageCount() == 0
	p.ctrl.Append(NewMessage(RoleUser, input))
	emit(Event{Kind: EventUserAppended, Content: input})

	// First message names the session. The same value is recomputed on the
	// new-conversation path; both writes agree, so the order never matters.
	if firstMessage {
		p.store.UpdateTitle(sessionID, TitleFor(input))
	}

	p.setPhase(PhaseSending)
	response, err := p.client.Send(ctx, input, p.userID)
	if err != nil {
		p.log.Error("chat request failed", map[string]interface{}{"error": err.Error()})
		p.setPhase(PhaseFailed)
		p.ctrl.Append(NewMessage(RoleAssistant, ApologyText))
		p.store.UpdateMessages(sessionID, p.ctrl.Messages())
		emit(Event{Kind: EventFailed, Content: ApologyText})
		return nil
	}

	p.setPhase(PhaseStreaming)
	p.ctrl.Append(NewMessage(RoleAssistant, ""))
	err = p.streamer.Stream(ctx, response, func(partial string) {
		p.ctrl.ReplaceLastContent(partial)
		emit(Event{Kind: EventReveal, Content: partial})
	})
	if err != nil {
		// Cancelled mid-reveal: remaining steps simply go unobserved.
		return err
	}

	p.setPhase(PhaseCommitting)
	// The space-rejoined prefix can drift from the original on runs of
	// whitespace; the final overwrite uses the exact server string.
	p.ctrl.ReplaceLastContent(response)
	p.store.UpdateMessages(sessionID, p.ctrl.Messages())
	emit(Event{Kind: EventDone, Content: response})
	return nil
}
