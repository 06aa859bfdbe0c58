package round

import (
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/pitch"
)

type fakeTimer struct {
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler records timers and fires them only on demand.
type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(_ time.Duration, fn func()) TimerHandle {
	t := &fakeTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the oldest live timer.
func (s *fakeScheduler) fire(t *testing.T) {
	t.Helper()
	for _, timer := range s.timers {
		if !timer.stopped && !timer.fired {
			timer.fired = true
			timer.fn()
			return
		}
	}
	t.Fatalf("no live timer to fire")
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, timer := range s.timers {
		if !timer.stopped && !timer.fired {
			n++
		}
	}
	return n
}

func mustPitch(t *testing.T, s string) pitch.Pitch {
	t.Helper()
	p, err := pitch.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return p
}

func testConfig(t *testing.T) model.Config {
	return model.Config{
		Difficulty: model.Easy,
		Questions:  3,
		Low:        mustPitch(t, "C4"),
		High:       mustPitch(t, "C5"),
	}
}

// guess renders the note name without its octave, the way a player
// types it. The octave suffix may span several digits and a minus sign.
func guess(p pitch.Pitch) string {
	s := p.String()
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i > 0 && s[i-1] == '-' {
		i--
	}
	return s[:i]
}

func TestThreeCorrectAnswersFinishRound(t *testing.T) {
	sched := &fakeScheduler{}
	var finished []model.RoundSummary
	c := New(testConfig(t), sched, rand.New(rand.NewSource(1)), Events{
		Finished: func(s model.RoundSummary) { finished = append(finished, s) },
	})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		q, ok := c.Current()
		if !ok {
			t.Fatalf("question %d: no open question", i)
		}
		if got := c.Submit(guess(q)); got != AnswerCorrect {
			t.Fatalf("question %d: Submit = %v, want AnswerCorrect", i, got)
		}
		if i < 2 {
			sched.fire(t) // pacing timer draws the next question
		}
	}
	if c.State() != StateFinished {
		t.Fatalf("state = %v, want StateFinished", c.State())
	}
	if len(finished) != 1 {
		t.Fatalf("finished events = %d, want 1", len(finished))
	}
	if finished[0].Answered != 3 || finished[0].Score != 3 {
		t.Fatalf("summary = %+v, want answered 3 score 3", finished[0])
	}
	if sched.pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", sched.pending())
	}
}

func TestTimeoutClosesQuestionAndRejectsLateAnswer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timed = true
	cfg.TimeLimitSecs = 5
	sched := &fakeScheduler{}
	timeUps := 0
	c := New(cfg, sched, rand.New(rand.NewSource(1)), Events{
		TimeUp: func(pitch.Pitch) { timeUps++ },
	})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	q, _ := c.Current()
	sched.fire(t) // countdown expires
	if timeUps != 1 {
		t.Fatalf("time-up events = %d, want 1", timeUps)
	}
	if c.Score() != -1 {
		t.Fatalf("score = %d, want -1", c.Score())
	}
	if c.Answered() != 1 {
		t.Fatalf("answered = %d, want 1", c.Answered())
	}
	// A late answer for the now-closed question is rejected unscored.
	if got := c.Submit(guess(q)); got != AnswerClosed {
		t.Fatalf("late Submit = %v, want AnswerClosed", got)
	}
	if c.Score() != -1 {
		t.Fatalf("score after late answer = %d, want -1", c.Score())
	}
}

func TestWrongAnswersKeepQuestionOpenAndScoreUnbounded(t *testing.T) {
	sched := &fakeScheduler{}
	c := New(testConfig(t), sched, rand.New(rand.NewSource(1)), Events{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	q, _ := c.Current()
	wrong := "C"
	if q.Class() == 0 {
		wrong = "D"
	}
	for i := 0; i < 3; i++ {
		if got := c.Submit(wrong); got != AnswerWrong {
			t.Fatalf("Submit = %v, want AnswerWrong", got)
		}
	}
	if c.Score() != -3 {
		t.Fatalf("score = %d, want -3", c.Score())
	}
	if c.Answered() != 0 {
		t.Fatalf("answered = %d, want 0", c.Answered())
	}
	if _, ok := c.Current(); !ok {
		t.Fatalf("question should remain open after wrong answers")
	}
}

func TestInvalidInputIsSignalledWithoutStateChange(t *testing.T) {
	sched := &fakeScheduler{}
	c := New(testConfig(t), sched, rand.New(rand.NewSource(1)), Events{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, raw := range []string{"", "H", "C##", "4"} {
		if got := c.Submit(raw); got != AnswerInvalid {
			t.Fatalf("Submit(%q) = %v, want AnswerInvalid", raw, got)
		}
	}
	if c.Score() != 0 || c.Answered() != 0 {
		t.Fatalf("score/answered changed on invalid input: %d/%d", c.Score(), c.Answered())
	}
}

func TestStartFailsOnEmptyPool(t *testing.T) {
	cfg := testConfig(t)
	cfg.Low = mustPitch(t, "C#4")
	cfg.High = mustPitch(t, "C#4")
	c := New(cfg, &fakeScheduler{}, nil, Events{})
	if err := c.Start(); err == nil {
		t.Fatalf("Start should fail on an empty pool")
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %v, want StateIdle", c.State())
	}
}

func TestStartValidation(t *testing.T) {
	base := testConfig(t)

	cfg := base
	cfg.Timed = true
	cfg.TimeLimitSecs = 0
	if err := New(cfg, &fakeScheduler{}, nil, Events{}).Start(); err == nil {
		t.Errorf("timed round without a limit should fail")
	}

	cfg = base
	cfg.Low, cfg.High = cfg.High, cfg.Low
	if err := New(cfg, &fakeScheduler{}, nil, Events{}).Start(); err == nil {
		t.Errorf("inverted range should fail")
	}

	cfg = base
	cfg.Difficulty = "impossible"
	if err := New(cfg, &fakeScheduler{}, nil, Events{}).Start(); err == nil {
		t.Errorf("unknown difficulty should fail")
	}

	cfg = base
	cfg.Questions = -1
	if err := New(cfg, &fakeScheduler{}, nil, Events{}).Start(); err == nil {
		t.Errorf("negative question target should fail")
	}
}

func TestStopEmitsOnce(t *testing.T) {
	sched := &fakeScheduler{}
	finished := 0
	c := New(testConfig(t), sched, rand.New(rand.NewSource(1)), Events{
		Finished: func(model.RoundSummary) { finished++ },
	})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	q, _ := c.Current()
	if got := c.Submit(guess(q)); got != AnswerCorrect {
		t.Fatalf("Submit = %v, want AnswerCorrect", got)
	}
	summary, ok := c.Stop()
	if !ok {
		t.Fatalf("Stop should emit a summary")
	}
	if summary.Answered != 1 || summary.Score != 1 {
		t.Fatalf("summary = %+v, want answered 1 score 1", summary)
	}
	if _, ok := c.Stop(); ok {
		t.Fatalf("second Stop should emit nothing")
	}
	if finished != 1 {
		t.Fatalf("finished events = %d, want 1", finished)
	}
	if sched.pending() != 0 {
		t.Fatalf("pending timers = %d, want 0", sched.pending())
	}
	// The cancelled pacing timer firing anyway must stay a no-op.
	for _, timer := range sched.timers {
		timer.fn()
	}
	if c.Answered() != 1 || c.State() != StateFinished {
		t.Fatalf("stale timer advanced a finished round")
	}
}

func TestCountdownRacingCorrectAnswerIsNoOp(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timed = true
	cfg.TimeLimitSecs = 5
	sched := &fakeScheduler{}
	c := New(cfg, sched, rand.New(rand.NewSource(1)), Events{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	countdown := sched.timers[0]
	q, _ := c.Current()
	if got := c.Submit(guess(q)); got != AnswerCorrect {
		t.Fatalf("Submit = %v, want AnswerCorrect", got)
	}
	// Simulate the countdown callback already in flight when the answer
	// claimed the question: the sequence guard must drop it.
	countdown.fn()
	if c.Score() != 1 {
		t.Fatalf("score = %d, want 1", c.Score())
	}
	if c.Answered() != 1 {
		t.Fatalf("answered = %d, want 1", c.Answered())
	}
}

func TestCountdownRearmsPerQuestion(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timed = true
	cfg.TimeLimitSecs = 5
	sched := &fakeScheduler{}
	c := New(cfg, sched, rand.New(rand.NewSource(1)), Events{})
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	q, _ := c.Current()
	c.Submit(guess(q))
	sched.fire(t) // pacing timer draws question 2
	if _, ok := c.Current(); !ok {
		t.Fatalf("no open question after pacing timer")
	}
	if sched.pending() != 1 {
		t.Fatalf("pending timers = %d, want exactly the fresh countdown", sched.pending())
	}
	if _, ok := c.Deadline(); !ok {
		t.Fatalf("open timed question should expose a deadline")
	}
}
