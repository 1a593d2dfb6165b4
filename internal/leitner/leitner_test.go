package leitner

import (
	"testing"
	"time"

	"github.com/example/lexbox/pkg/models"
)

func TestNextBoxCorrectAdvances(t *testing.T) {
	for b := 1; b < DefaultMaxBox; b++ {
		if got := NextBox(b, DefaultMaxBox, Correct); got != b+1 {
			t.Errorf("NextBox(%d, correct) = %d, want %d", b, got, b+1)
		}
	}
}

func TestNextBoxCorrectCappedAtMax(t *testing.T) {
	if got := NextBox(DefaultMaxBox, DefaultMaxBox, Correct); got != DefaultMaxBox {
		t.Errorf("NextBox(max, correct) = %d, want %d", got, DefaultMaxBox)
	}
}

func TestNextBoxWrongResetsToOne(t *testing.T) {
	for b := 1; b <= DefaultMaxBox; b++ {
		if got := NextBox(b, DefaultMaxBox, Wrong); got != 1 {
			t.Errorf("NextBox(%d, wrong) = %d, want 1", b, got)
		}
	}
}

func TestNextBoxHardStaysPut(t *testing.T) {
	for b := 1; b <= DefaultMaxBox; b++ {
		if got := NextBox(b, DefaultMaxBox, Hard); got != b {
			t.Errorf("NextBox(%d, hard) = %d, want %d", b, got, b)
		}
	}
}

func TestNextBoxPanicsOutOfRange(t *testing.T) {
	for _, box := range []int{0, -1, 6} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NextBox(%d, correct) did not panic", box)
				}
			}()
			NextBox(box, DefaultMaxBox, Correct)
		}()
	}
}

func TestIntervalConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     IntervalConfig
		wantErr bool
	}{
		{"default", DefaultIntervals(), false},
		{"flat is allowed", IntervalConfig{1, 1, 1}, false},
		{"empty", IntervalConfig{}, true},
		{"zero day", IntervalConfig{0, 2, 4}, true},
		{"decreasing", IntervalConfig{1, 4, 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNextDueDateAddsCalendarDays(t *testing.T) {
	cfg := DefaultIntervals()
	from := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

	got := NextDueDate(1, cfg, from)
	want := time.Date(2024, 1, 11, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextDueDate(1) = %v, want %v", got, want)
	}

	got = NextDueDate(5, cfg, from)
	want = time.Date(2024, 1, 26, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextDueDate(5) = %v, want %v", got, want)
	}
}

func TestNextDueDatePreservesTimeOfDayAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-03-31 is the spring-forward date in Berlin.
	from := time.Date(2024, 3, 30, 9, 0, 0, 0, loc)
	got := NextDueDate(2, DefaultIntervals(), from)
	if got.Hour() != 9 {
		t.Errorf("hour after DST boundary = %d, want 9", got.Hour())
	}
	if got.Day() != 1 || got.Month() != time.April {
		t.Errorf("date = %v, want April 1", got)
	}
}

func TestApplyAnswerWrongResets(t *testing.T) {
	// Card in box 3 answered wrong on 2024-01-10: back to box 1,
	// due again on 2024-01-11.
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	card := models.Card{BoxIndex: 3, CorrectCount: 4, IncorrectCount: 1}

	got := ApplyAnswer(card, Wrong, DefaultIntervals(), now)

	if got.BoxIndex != 1 {
		t.Errorf("BoxIndex = %d, want 1", got.BoxIndex)
	}
	want := time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC)
	if !got.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", got.NextReviewAt, want)
	}
	if got.IncorrectCount != 2 || got.CorrectCount != 4 {
		t.Errorf("counters = (%d correct, %d incorrect), want (4, 2)", got.CorrectCount, got.IncorrectCount)
	}
}

func TestApplyAnswerMaxBoxCorrect(t *testing.T) {
	// Card in box 5 answered correct stays in box 5 and advances by the
	// box-5 interval (16 days).
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	card := models.Card{BoxIndex: 5}

	got := ApplyAnswer(card, Correct, DefaultIntervals(), now)

	if got.BoxIndex != 5 {
		t.Errorf("BoxIndex = %d, want 5", got.BoxIndex)
	}
	want := time.Date(2024, 1, 26, 8, 0, 0, 0, time.UTC)
	if !got.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", got.NextReviewAt, want)
	}
	if got.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", got.CorrectCount)
	}
}

func TestApplyAnswerHardKeepsBoxAndCounters(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	card := models.Card{BoxIndex: 2, CorrectCount: 3, IncorrectCount: 1}

	got := ApplyAnswer(card, Hard, DefaultIntervals(), now)

	if got.BoxIndex != 2 {
		t.Errorf("BoxIndex = %d, want 2", got.BoxIndex)
	}
	want := now.AddDate(0, 0, 2)
	if !got.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", got.NextReviewAt, want)
	}
	if got.CorrectCount != 3 || got.IncorrectCount != 1 {
		t.Errorf("counters changed on hard: (%d, %d)", got.CorrectCount, got.IncorrectCount)
	}
}

func TestApplyAnswerClampsStrandedCard(t *testing.T) {
	// A card left in box 5 after the interval table shrank to 3 boxes is
	// treated as a top-box card instead of panicking.
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	cfg := IntervalConfig{1, 2, 4}
	card := models.Card{BoxIndex: 5}

	got := ApplyAnswer(card, Correct, cfg, now)
	if got.BoxIndex != 3 {
		t.Errorf("correct: BoxIndex = %d, want 3", got.BoxIndex)
	}
	if want := now.AddDate(0, 0, 4); !got.NextReviewAt.Equal(want) {
		t.Errorf("correct: NextReviewAt = %v, want %v", got.NextReviewAt, want)
	}

	got = ApplyAnswer(card, Wrong, cfg, now)
	if got.BoxIndex != 1 {
		t.Errorf("wrong: BoxIndex = %d, want 1", got.BoxIndex)
	}

	got = ApplyAnswer(card, Hard, cfg, now)
	if got.BoxIndex != 3 {
		t.Errorf("hard: BoxIndex = %d, want 3", got.BoxIndex)
	}
}

func TestApplyAnswerDoesNotMutateInput(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	card := models.Card{BoxIndex: 2}
	ApplyAnswer(card, Correct, DefaultIntervals(), now)
	if card.BoxIndex != 2 || card.CorrectCount != 0 {
		t.Error("ApplyAnswer mutated its input")
	}
}

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		in      string
		want    Outcome
		wantErr bool
	}{
		{"correct", Correct, false},
		{"wrong", Wrong, false},
		{"hard", Hard, false},
		{"easy", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseOutcome(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutcome(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutcome(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	for _, o := range []Outcome{Correct, Wrong, Hard} {
		text, err := o.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", o, err)
		}
		var back Outcome
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if back != o {
			t.Errorf("round trip %v -> %s -> %v", o, text, back)
		}
	}
}
