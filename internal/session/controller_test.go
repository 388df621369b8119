package session

import (
	"testing"
	"time"

	"github.com/abhisek/labquest/internal/events"
	"github.com/abhisek/labquest/internal/phase"
	"github.com/abhisek/labquest/internal/quiz"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func testContent() Content {
	qs := make([]quiz.Question, 10)
	for i := range qs {
		qs[i] = quiz.Question{
			Prompt: "q",
			Options: []quiz.Option{
				{Text: "wrong"},
				{Text: "right", Correct: true},
				{Text: "also wrong"},
			},
		}
	}
	return Content{
		LessonID:      "drag-force",
		Questions:     qs,
		PredictAnswer: "b",
		TwistAnswer:   "c",
		Applications:  []string{"Parachutes", "Cycling", "Cars", "Skydiving"},
	}
}

type harness struct {
	c     *Controller
	clock *fakeClock
	rec   *events.Recorder
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		clock: &fakeClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)},
		rec:   &events.Recorder{},
	}
	opts = append([]Option{WithClock(h.clock.now), WithNotifier(h.rec)}, opts...)
	h.c = New(testContent(), cfg, opts...)
	return h
}

// step advances past the debounce window, then calls fn.
func (h *harness) step(fn func() bool) bool {
	h.clock.advance(time.Second)
	return fn()
}

// satisfy makes the current phase's gate pass.
func (h *harness) satisfy(t *testing.T) {
	t.Helper()
	switch h.c.Phase() {
	case phase.Predict:
		h.c.SelectPrediction("b")
	case phase.TwistPredict:
		h.c.SelectTwistPrediction("a")
	case phase.Transfer:
		for i := range 3 {
			h.c.MarkApplication(i)
		}
	case phase.Test:
		answerCorrect(h.c, 10)
		if _, ok := h.c.SubmitTest(); !ok {
			t.Fatal("submit failed")
		}
	}
}

func answerCorrect(c *Controller, n int) {
	for q := range 10 {
		opt := 0
		if q < n {
			opt = 1
		}
		c.AnswerQuestion(q, opt)
	}
}

func TestInitialize(t *testing.T) {
	for _, p := range phase.All() {
		h := newHarness(t, DefaultConfig())
		h.c.Initialize(string(p))
		if h.c.Phase() != p {
			t.Errorf("Initialize(%q) -> %q", p, h.c.Phase())
		}
	}

	for _, bad := range []string{"", "quiz", "HOOK", "twist predict", "\x00", " test "} {
		h := newHarness(t, DefaultConfig())
		h.c.Initialize(bad)
		if h.c.Phase() != phase.Hook {
			t.Errorf("Initialize(%q) -> %q, want hook", bad, h.c.Phase())
		}
	}
}

func TestSyncExternalPhase(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	if !h.c.SyncExternalPhase("review") || h.c.Phase() != phase.Review {
		t.Fatalf("sync to review failed, phase %q", h.c.Phase())
	}
	if h.c.SyncExternalPhase("review") {
		t.Error("sync to current phase should report false")
	}
	if h.c.SyncExternalPhase("nope") || h.c.Phase() != phase.Review {
		t.Error("invalid sync changed phase")
	}
	if len(h.rec.Events) != 0 {
		t.Errorf("host sync emitted %d events", len(h.rec.Events))
	}
	if !h.c.State().Visited(phase.Play) {
		t.Error("phases before the resumed one should count as visited")
	}
}

func TestGoNextWalksFixedOrder(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	all := phase.All()

	for i := 1; i < len(all); i++ {
		h.satisfy(t)
		if !h.step(h.c.GoNext) {
			t.Fatalf("GoNext from %q refused", all[i-1])
		}
		if h.c.Phase() != all[i] {
			t.Fatalf("phase = %q, want %q", h.c.Phase(), all[i])
		}
	}
	if h.step(h.c.GoNext) || h.c.Phase() != phase.Mastery {
		t.Fatal("GoNext moved past mastery")
	}

	changes := h.rec.OfType(events.TypePhaseChange)
	if len(changes) != phase.Count-1 {
		t.Errorf("phase_change events = %d, want %d", len(changes), phase.Count-1)
	}
	if len(h.rec.OfType(events.TypeLessonCompleted)) != 1 {
		t.Error("expected one lesson_completed event")
	}
}

func TestGoBackAtHookIsNoop(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	if h.step(h.c.GoBack) || h.c.Phase() != phase.Hook {
		t.Fatal("GoBack at hook moved")
	}
	if len(h.rec.Events) != 0 {
		t.Fatal("GoBack at hook emitted events")
	}
	if h.c.CanGoBack() {
		t.Fatal("CanGoBack at hook")
	}

	h.c.SyncExternalPhase("transfer")
	if !h.step(h.c.GoBack) || h.c.Phase() != phase.TwistReview {
		t.Fatalf("GoBack from transfer -> %q", h.c.Phase())
	}
}

func TestGates(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	h.c.SyncExternalPhase("predict")
	if h.c.CanAdvance() || h.step(h.c.GoNext) {
		t.Fatal("predict advanced without a prediction")
	}
	h.c.SelectPrediction("a")
	if !h.c.CanAdvance() {
		t.Fatal("any prediction should enable next")
	}

	h.c.SyncExternalPhase("twist_predict")
	if h.c.CanAdvance() {
		t.Fatal("twist_predict gate open without a choice")
	}
	h.c.SelectTwistPrediction("c")
	if !h.c.CanAdvance() {
		t.Fatal("twist_predict gate closed after a choice")
	}

	h.c.SyncExternalPhase("transfer")
	for i := range 2 {
		h.c.MarkApplication(i)
		if h.c.CanAdvance() {
			t.Fatalf("transfer gate open after %d cards", i+1)
		}
	}
	h.c.MarkApplication(1)
	if h.c.CanAdvance() {
		t.Fatal("repeat mark counted twice")
	}
	h.c.MarkApplication(3)
	if !h.c.CanAdvance() {
		t.Fatal("transfer gate closed after 3 cards")
	}

	for _, p := range []string{"hook", "play", "review", "twist_play", "twist_review"} {
		h.c.SyncExternalPhase(p)
		if !h.c.CanAdvance() {
			t.Errorf("%s should always allow advancing", p)
		}
	}
}

func TestPerLessonApplicationGate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinApplications = 2
	h := newHarness(t, cfg)
	h.c.SyncExternalPhase("transfer")
	h.c.MarkApplication(0)
	h.c.MarkApplication(2)
	if !h.c.CanAdvance() {
		t.Fatal("gate with MinApplications=2 should open after 2 cards")
	}
}

func TestPredictionFraming(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.c.SyncExternalPhase("predict")

	if made, _ := h.c.PredictionCorrect(); made {
		t.Fatal("prediction reported before selection")
	}

	h.c.SelectPrediction("b")
	if made, correct := h.c.PredictionCorrect(); !made || !correct {
		t.Fatalf("correct prediction framed as (%v, %v)", made, correct)
	}
	if got := h.c.State().Prediction; got != "b" {
		t.Fatalf("Prediction = %q", got)
	}

	h.c.SelectPrediction("a")
	if made, correct := h.c.PredictionCorrect(); !made || correct {
		t.Fatalf("wrong prediction framed as (%v, %v)", made, correct)
	}
	if !h.c.CanAdvance() {
		t.Fatal("wrong prediction should still enable next")
	}

	preds := h.rec.OfType(events.TypePredictionMade)
	if len(preds) != 2 {
		t.Fatalf("prediction events = %d", len(preds))
	}
	if d := preds[0].Details.(events.PredictionMade); !d.Correct || d.Choice != "b" {
		t.Errorf("first prediction details = %+v", d)
	}
}

func TestSelectionsOutsideTheirPhaseIgnored(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	if h.c.SelectPrediction("b") || h.c.SelectTwistPrediction("c") {
		t.Error("prediction accepted at hook")
	}
	if h.c.MarkApplication(0) || h.c.AnswerQuestion(0, 1) {
		t.Error("transfer/test input accepted at hook")
	}
	h.c.SyncExternalPhase("transfer")
	if h.c.MarkApplication(-1) || h.c.MarkApplication(4) {
		t.Error("out-of-range card accepted")
	}
	h.c.SyncExternalPhase("test")
	if h.c.AnswerQuestion(10, 0) || h.c.AnswerQuestion(0, 3) || h.c.AnswerQuestion(0, -1) {
		t.Error("out-of-range answer accepted")
	}
}

func TestSubmitRequiresEveryAnswer(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.c.SyncExternalPhase("test")

	for q := range 10 {
		if h.c.CanSubmit() {
			t.Fatalf("submit enabled with %d answered", q)
		}
		h.c.AnswerQuestion(q, 1)
	}
	if !h.c.CanSubmit() {
		t.Fatal("submit disabled with every question answered")
	}
}

func TestPassingScoreUnlocksMastery(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.c.SyncExternalPhase("test")

	answerCorrect(h.c, 7)
	r, ok := h.c.SubmitTest()
	if !ok || r.Score != 7 || !r.Passed {
		t.Fatalf("SubmitTest = %+v, %v", r, ok)
	}
	if !h.c.CanAdvance() {
		t.Fatal("passing score did not unlock mastery")
	}
	if h.c.AnswerQuestion(0, 0) {
		t.Fatal("answer changed after submission")
	}
	if !h.step(h.c.GoNext) || h.c.Phase() != phase.Mastery {
		t.Fatalf("phase = %q, want mastery", h.c.Phase())
	}

	done := h.rec.OfType(events.TypeLessonCompleted)
	if len(done) != 1 || done[0].Details.(events.LessonCompleted).Score != 7 {
		t.Fatalf("lesson_completed = %+v", done)
	}
}

func TestFailingScoreRetriesFromEarlierPhase(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.c.SyncExternalPhase("test")

	answerCorrect(h.c, 6)
	r, _ := h.c.SubmitTest()
	if r.Score != 6 || r.Passed {
		t.Fatalf("result = %+v", r)
	}
	if h.c.CanAdvance() || h.step(h.c.GoNext) {
		t.Fatal("failing score advanced")
	}
	if !h.c.CanRetry() {
		t.Fatal("retry not offered")
	}

	if !h.c.RetryTest() {
		t.Fatal("RetryTest refused")
	}
	s := h.c.State()
	if s.Phase != phase.Review {
		t.Errorf("retry returned to %q, want review", s.Phase)
	}
	if s.Submitted || s.Answers.Answered() != 0 {
		t.Errorf("retry kept attempt state: %+v", s)
	}
	if s.Attempts != 1 {
		t.Errorf("Attempts = %d", s.Attempts)
	}
	if h.c.RetryTest() {
		t.Error("second retry accepted")
	}
}

func TestMasteryOnlyAfterPassing(t *testing.T) {
	h := newHarness(t, Config{JumpPolicy: JumpAny})

	if h.step(func() bool { return h.c.GoToPhase(phase.Mastery) }) {
		t.Fatal("GoToPhase(mastery) succeeded without passing")
	}
	if h.c.CanJumpTo(phase.Mastery) || h.step(func() bool { return h.c.JumpTo(phase.Mastery) }) {
		t.Fatal("jump to mastery allowed without passing")
	}

	h.c.SyncExternalPhase("test")
	answerCorrect(h.c, 9)
	h.c.SubmitTest()
	if !h.step(func() bool { return h.c.GoToPhase(phase.Mastery) }) {
		t.Fatal("GoToPhase(mastery) refused after passing")
	}
}

func TestGoToPhaseDebounce(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	if !h.c.GoToPhase(phase.Play) {
		t.Fatal("first transition refused")
	}
	for range 5 {
		h.clock.advance(20 * time.Millisecond)
		h.c.GoToPhase(phase.Play)
		h.c.GoToPhase(phase.Review)
	}
	if h.c.Phase() != phase.Play {
		t.Fatalf("phase = %q, want play", h.c.Phase())
	}
	if n := len(h.rec.OfType(events.TypePhaseChange)); n != 1 {
		t.Fatalf("phase_change events = %d, want 1", n)
	}

	h.clock.advance(DefaultDebounce)
	if !h.c.GoToPhase(phase.Review) {
		t.Fatal("transition after window refused")
	}
}

func TestGoToPhaseIgnoresInvalidAndCurrent(t *testing.T) {
	h := newHarness(t, Config{Debounce: 0})
	if h.c.GoToPhase("bogus") || h.c.GoToPhase(phase.Hook) {
		t.Fatal("invalid or current target accepted")
	}
	if len(h.rec.Events) != 0 {
		t.Fatal("no-op emitted events")
	}
}

func TestPhaseChangeEventAndCallback(t *testing.T) {
	var seen []phase.Phase
	h := newHarness(t, DefaultConfig(), OnPhaseChange(func(p phase.Phase) { seen = append(seen, p) }))

	h.c.GoToPhase(phase.Predict)

	if len(seen) != 1 || seen[0] != phase.Predict {
		t.Fatalf("callback saw %v", seen)
	}
	e := h.rec.Events[0]
	d := e.Details.(events.PhaseChange)
	if e.Type != events.TypePhaseChange || d.To != phase.Predict || d.From != phase.Hook || d.Label != "Predict" {
		t.Fatalf("event = %+v", e)
	}
	if e.LessonID != "drag-force" || !e.Timestamp.Equal(h.clock.t) {
		t.Fatalf("event envelope = %+v", e)
	}
}

func TestAnswerCallbackPerQuestion(t *testing.T) {
	var right, wrong int
	h := newHarness(t, DefaultConfig(), OnAnswer(func(ok bool) {
		if ok {
			right++
		} else {
			wrong++
		}
	}))
	h.c.SyncExternalPhase("test")
	answerCorrect(h.c, 8)
	h.c.SubmitTest()
	if right != 8 || wrong != 2 {
		t.Fatalf("callbacks right=%d wrong=%d", right, wrong)
	}
}

func TestJumpPolicies(t *testing.T) {
	t.Run("visited", func(t *testing.T) {
		h := newHarness(t, Config{JumpPolicy: JumpVisited})
		if h.c.CanJumpTo(phase.Review) {
			t.Fatal("jump ahead to unvisited phase allowed")
		}
		h.c.SyncExternalPhase("twist_play")
		h.c.SyncExternalPhase("play")
		if !h.step(func() bool { return h.c.JumpTo(phase.TwistPlay) }) {
			t.Fatal("jump to visited phase refused")
		}
		if h.c.CanJumpTo(phase.Transfer) {
			t.Fatal("jump past furthest phase allowed")
		}
	})

	t.Run("backward", func(t *testing.T) {
		h := newHarness(t, Config{JumpPolicy: JumpBackward})
		h.c.SyncExternalPhase("twist_play")
		h.c.SyncExternalPhase("play")
		if h.c.CanJumpTo(phase.TwistPlay) {
			t.Fatal("forward jump allowed under backward policy")
		}
		if !h.step(func() bool { return h.c.JumpTo(phase.Hook) }) {
			t.Fatal("backward jump refused")
		}
	})

	t.Run("any", func(t *testing.T) {
		h := newHarness(t, Config{JumpPolicy: JumpAny})
		if !h.step(func() bool { return h.c.JumpTo(phase.Transfer) }) {
			t.Fatal("jump refused under any policy")
		}
	})
}

func TestRestartResetsTransientState(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	for h.c.Phase() != phase.Mastery {
		h.satisfy(t)
		if !h.step(h.c.GoNext) {
			t.Fatalf("stuck at %q", h.c.Phase())
		}
	}

	before := h.c.RunID()
	h.step(func() bool { h.c.Restart(); return true })

	s := h.c.State()
	if s.Phase != phase.Hook || s.Furthest != 0 {
		t.Errorf("restart landed at %q furthest %d", s.Phase, s.Furthest)
	}
	if s.Prediction != "" || s.TwistPrediction != "" || len(s.Applications) != 0 {
		t.Errorf("predictions or applications survived restart: %+v", s)
	}
	if s.Submitted || s.Attempts != 0 || s.Answers.Answered() != 0 || s.Result.Score != 0 {
		t.Errorf("test state survived restart: %+v", s)
	}
	restarted := h.rec.OfType(events.TypeLessonRestarted)
	if len(restarted) != 1 {
		t.Fatal("expected lesson_restarted event")
	}
	if restarted[0].RunID != before {
		t.Error("restart event should close the old run")
	}
	last := h.rec.Events[len(h.rec.Events)-1]
	if h.c.RunID() == before || last.RunID != h.c.RunID() {
		t.Errorf("restart should begin a new run: before %s now %s last %s", before, h.c.RunID(), last.RunID)
	}
}

func TestStateIsCopy(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.c.SyncExternalPhase("transfer")
	h.c.MarkApplication(0)

	s := h.c.State()
	s.Applications[3] = true
	s.Answers[0] = 2

	again := h.c.State()
	if again.Applications[3] || again.Answers[0] != quiz.Unanswered {
		t.Fatal("mutating State() leaked into controller")
	}
}

func TestConfigNormalize(t *testing.T) {
	c := Config{PassThreshold: 50, MinApplications: 9, JumpPolicy: "sideways", Debounce: -1, RetryPhase: phase.Mastery}.
		normalize(10, 4)
	if c.PassThreshold != 10 || c.MinApplications != 4 || c.JumpPolicy != JumpVisited || c.Debounce != 0 || c.RetryPhase != phase.Review {
		t.Fatalf("normalize = %+v", c)
	}

	c = Config{}.normalize(10, 4)
	if c.PassThreshold != DefaultPassThreshold || c.RetryPhase != DefaultRetryPhase {
		t.Fatalf("zero config = %+v", c)
	}
}

func TestParseJumpPolicy(t *testing.T) {
	for in, want := range map[string]JumpPolicy{"any": JumpAny, "visited": JumpVisited, "backward": JumpBackward, "": JumpVisited} {
		got, err := ParseJumpPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseJumpPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseJumpPolicy("skip"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
