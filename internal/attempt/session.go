package attempt

import (
	"context"
	"log/slog"
	"time"

	"github.com/quizforge/scorm-engine/internal/models"
)

// Event is a message fed into the session's single consumer loop. All attempt
// mutations flow through events, so only one is ever in flight.
type Event interface{ isEvent() }

type StartEvent struct{}

type AnswerEvent struct {
	Answer models.Answer
}

type ConfirmEvent struct{}

type NextEvent struct{}

type SubmitEvent struct{}

type RestartEvent struct{}

type tickEvent struct {
	now time.Time
}

func (StartEvent) isEvent()   {}
func (AnswerEvent) isEvent()  {}
func (ConfirmEvent) isEvent() {}
func (NextEvent) isEvent()    {}
func (SubmitEvent) isEvent()  {}
func (RestartEvent) isEvent() {}
func (tickEvent) isEvent()    {}

// Session drives a Machine from an event queue consumed by one goroutine.
// UI input and the countdown timer both post events; the consumer applies
// them sequentially, which is the only concurrency discipline the attempt
// state needs.
type Session struct {
	machine *Machine
	logger  *slog.Logger
	events  chan Event

	ticker     *time.Ticker
	tickerStop chan struct{}

	// OnNotice receives validation refusals: transient, user-visible,
	// never fatal. OnUpdate fires after every applied event.
	OnNotice func(err error)
	OnUpdate func(m *Machine)
}

func NewSession(m *Machine, logger *slog.Logger) *Session {
	return &Session{
		machine: m,
		logger:  logger,
		events:  make(chan Event, 16),
	}
}

func (s *Session) Machine() *Machine { return s.machine }

// Post enqueues an event for the consumer loop.
func (s *Session) Post(ev Event) {
	s.events <- ev
}

// Run consumes events until the context is cancelled. It owns the countdown
// ticker: armed on a successful start, torn down on every path that submits.
func (s *Session) Run(ctx context.Context) {
	defer s.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev Event) {
	var err error
	switch ev := ev.(type) {
	case StartEvent:
		if err = s.machine.Begin(); err == nil && s.machine.test.TimeLimitMinutes > 0 {
			s.startTimer()
		}
	case AnswerEvent:
		err = s.machine.SetAnswer(ev.Answer)
	case ConfirmEvent:
		err = s.machine.Confirm()
	case NextEvent:
		err = s.machine.Next()
	case SubmitEvent:
		err = s.machine.Submit()
	case RestartEvent:
		s.machine.Restart()
	case tickEvent:
		s.machine.Tick(ev.now)
	}

	if s.machine.Submitted() {
		s.stopTimer()
	}

	if err != nil {
		s.logger.Debug("event refused", "error", err)
		if s.OnNotice != nil {
			s.OnNotice(err)
		}
	}
	if s.OnUpdate != nil {
		s.OnUpdate(s.machine)
	}
}

func (s *Session) startTimer() {
	s.stopTimer()
	s.ticker = time.NewTicker(time.Second)
	s.tickerStop = make(chan struct{})
	go func(ticker *time.Ticker, stop chan struct{}) {
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				s.events <- tickEvent{now: now}
			}
		}
	}(s.ticker, s.tickerStop)
}

func (s *Session) stopTimer() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.tickerStop)
	s.ticker = nil
	s.tickerStop = nil
}
