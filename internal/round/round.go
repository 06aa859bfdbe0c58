package round

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/pitch"
	"github.com/verte-zerg/clef/internal/pool"
)

// State is the round lifecycle. Transitions are one-way; a finished
// controller is discarded and a new round starts fresh.
type State int

// Round states.
const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

// Within Running, the phase separates the answer window from the pause
// before the next draw, so "accepting answers while finished" cannot be
// represented.
type phase int

const (
	phaseAwaiting phase = iota
	phaseBetween
)

// Answer classifies one Submit call.
type Answer int

// Answer outcomes.
const (
	// AnswerClosed: the round is not running or the question already
	// ended; input in this window is rejected, not scored.
	AnswerClosed Answer = iota
	// AnswerInvalid: the text is not a note name; no state change.
	AnswerInvalid
	// AnswerWrong: parseable but a different semitone class; score -1,
	// the same question stays open.
	AnswerWrong
	// AnswerCorrect: enharmonic match; score +1, the question ends.
	AnswerCorrect
)

// Pacing pause between the end of one question and the next draw.
const drawPause = 900 * time.Millisecond

// Events are optional callbacks fired outside the controller lock, in
// order. They must not assume the round is still in the state that
// produced them.
type Events struct {
	Question func(p pitch.Pitch)
	TimeUp   func(p pitch.Pitch)
	Finished func(s model.RoundSummary)
}

// Controller owns one round: its pool, score, current question, and the
// two timers (per-question countdown, next-question draw). All methods
// are safe for concurrent use; timer callbacks serialize through the
// same lock, and a per-question sequence number gives a single end-of-
// question authority when an answer races the countdown.
type Controller struct {
	mu     sync.Mutex
	cfg    model.Config
	sched  Scheduler
	events Events
	rnd    *rand.Rand
	now    func() time.Time

	state     State
	phase     phase
	notes     []pitch.Pitch
	current   pitch.Pitch
	seq       int
	score     int
	answered  int
	remaining int
	startedAt time.Time
	deadline  time.Time

	countdown TimerHandle
	nextDraw  TimerHandle
}

// New builds an idle controller. A nil scheduler selects the wall
// clock; a nil rnd seeds from the current time.
func New(cfg model.Config, sched Scheduler, rnd *rand.Rand, events Events) *Controller {
	if sched == nil {
		sched = WallClock()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		cfg:    cfg,
		sched:  sched,
		events: events,
		rnd:    rnd,
		now:    time.Now,
	}
}

// Start validates the config, builds the note pool, and draws the first
// question. A validation failure or an empty pool leaves the controller
// idle.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("round already started")
	}
	if !c.cfg.Difficulty.Valid() {
		c.mu.Unlock()
		return fmt.Errorf("unknown difficulty %q", c.cfg.Difficulty)
	}
	if c.cfg.Timed && c.cfg.TimeLimitSecs < 1 {
		c.mu.Unlock()
		return fmt.Errorf("time limit must be at least 1 second")
	}
	if c.cfg.Questions < 0 {
		c.mu.Unlock()
		return fmt.Errorf("questions must be 0 (unlimited) or positive")
	}
	low, high := c.cfg.Low.Abs(), c.cfg.High.Abs()
	if low > high {
		c.mu.Unlock()
		return fmt.Errorf("range %s-%s is inverted", c.cfg.Low, c.cfg.High)
	}
	notes := pool.Build(low, high, c.cfg.Difficulty, pool.NewExclusionSet(c.cfg.Exclusions))
	if len(notes) == 0 {
		c.mu.Unlock()
		return fmt.Errorf("no eligible notes between %s and %s at difficulty %s", c.cfg.Low, c.cfg.High, c.cfg.Difficulty)
	}
	c.notes = notes
	c.score = 0
	c.answered = 0
	c.remaining = c.cfg.Questions
	c.startedAt = c.now()
	c.state = StateRunning
	fire := c.drawLocked()
	c.mu.Unlock()
	fire()
	return nil
}

// drawLocked picks the next question and arms its countdown. Returns
// the event to fire after the lock is released.
func (c *Controller) drawLocked() func() {
	if c.nextDraw != nil {
		c.nextDraw.Stop()
		c.nextDraw = nil
	}
	c.seq++
	seq := c.seq
	c.current = c.notes[c.rnd.Intn(len(c.notes))]
	c.phase = phaseAwaiting
	if c.cfg.Timed {
		if c.countdown != nil {
			c.countdown.Stop()
		}
		limit := time.Duration(c.cfg.TimeLimitSecs) * time.Second
		c.deadline = c.now().Add(limit)
		c.countdown = c.sched.AfterFunc(limit, func() {
			c.timeUp(seq)
		})
	}
	question := c.current
	handler := c.events.Question
	return func() {
		if handler != nil {
			handler(question)
		}
	}
}

// timeUp is the countdown callback. The sequence guard drops callbacks
// for questions that already ended.
func (c *Controller) timeUp(seq int) {
	c.mu.Lock()
	if c.state != StateRunning || c.phase != phaseAwaiting || seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.score--
	c.phase = phaseBetween
	c.countdown = nil
	question := c.current
	handler := c.events.TimeUp
	fire := c.endQuestionLocked()
	c.mu.Unlock()
	if handler != nil {
		handler(question)
	}
	fire()
}

// Submit evaluates a typed guess against the current question.
func (c *Controller) Submit(raw string) Answer {
	c.mu.Lock()
	if c.state != StateRunning || c.phase != phaseAwaiting {
		c.mu.Unlock()
		return AnswerClosed
	}
	class, ok := pitch.ParseGuess(raw)
	if !ok {
		c.mu.Unlock()
		return AnswerInvalid
	}
	if class != c.current.Class() {
		c.score--
		c.mu.Unlock()
		return AnswerWrong
	}
	c.score++
	c.phase = phaseBetween
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	fire := c.endQuestionLocked()
	c.mu.Unlock()
	fire()
	return AnswerCorrect
}

// endQuestionLocked advances the counters and either finishes the round
// or schedules the next draw. Returns the events to fire after unlock.
func (c *Controller) endQuestionLocked() func() {
	c.answered++
	if c.cfg.Questions > 0 {
		c.remaining--
		if c.remaining == 0 {
			_, fire := c.finishLocked()
			return fire
		}
	}
	if c.nextDraw != nil {
		c.nextDraw.Stop()
	}
	c.nextDraw = c.sched.AfterFunc(drawPause, c.nextQuestion)
	return func() {}
}

// nextQuestion is the pacing-timer callback.
func (c *Controller) nextQuestion() {
	c.mu.Lock()
	if c.state != StateRunning || c.phase != phaseBetween {
		c.mu.Unlock()
		return
	}
	fire := c.drawLocked()
	c.mu.Unlock()
	fire()
}

// Stop ends the round and emits its summary. Stopping an idle or
// already-finished round reports ok=false and emits nothing.
func (c *Controller) Stop() (model.RoundSummary, bool) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return model.RoundSummary{}, false
	}
	summary, fire := c.finishLocked()
	c.mu.Unlock()
	fire()
	return summary, true
}

// finishLocked cancels all pending timers, marks the round finished,
// and returns the summary plus the single Finished event.
func (c *Controller) finishLocked() (model.RoundSummary, func()) {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	if c.nextDraw != nil {
		c.nextDraw.Stop()
		c.nextDraw = nil
	}
	c.state = StateFinished
	summary := c.summaryLocked()
	handler := c.events.Finished
	return summary, func() {
		if handler != nil {
			handler(summary)
		}
	}
}

func (c *Controller) summaryLocked() model.RoundSummary {
	return model.RoundSummary{
		StartedAt:     c.startedAt,
		EndedAt:       c.now(),
		Difficulty:    c.cfg.Difficulty,
		Timed:         c.cfg.Timed,
		TimeLimitSecs: c.cfg.TimeLimitSecs,
		Questions:     c.cfg.Questions,
		Answered:      c.answered,
		Score:         c.score,
		Low:           c.cfg.Low,
		High:          c.cfg.High,
	}
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Score returns the running score; it may be negative.
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score
}

// Answered returns the number of completed questions.
func (c *Controller) Answered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answered
}

// Current returns the active question while one is open for answers.
func (c *Controller) Current() (pitch.Pitch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateRunning || c.phase != phaseAwaiting {
		return pitch.Pitch{}, false
	}
	return c.current, true
}

// Deadline returns the countdown deadline of the open question.
func (c *Controller) Deadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cfg.Timed || c.state != StateRunning || c.phase != phaseAwaiting {
		return time.Time{}, false
	}
	return c.deadline, true
}

// PoolSize returns the number of eligible spellings after Start.
func (c *Controller) PoolSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.notes)
}
