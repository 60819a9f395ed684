package sentiment

import "testing"

func TestScorePositive(t *testing.T) {
	score := Score("Team celebrates record victory after successful season")
	if score <= 0 {
		t.Errorf("Score() = %v, want > 0", score)
	}
}

func TestScoreNegative(t *testing.T) {
	score := Score("Market crash deepens crisis as losses mount")
	if score >= 0 {
		t.Errorf("Score() = %v, want < 0", score)
	}
}

func TestScoreNeutral(t *testing.T) {
	if score := Score("Committee schedules quarterly meeting for Tuesday"); score != 0 {
		t.Errorf("Score() = %v, want 0", score)
	}
}

func TestScoreEmptyText(t *testing.T) {
	if score := Score(""); score != 0 {
		t.Errorf("Score(\"\") = %v, want 0", score)
	}
}

func TestScoreNegationFlips(t *testing.T) {
	plain := Score("The plan is good")
	negated := Score("The plan is not good")
	if plain <= 0 {
		t.Fatalf("baseline score = %v, want > 0", plain)
	}
	if negated >= 0 {
		t.Errorf("negated score = %v, want < 0", negated)
	}
}

func TestScoreBounded(t *testing.T) {
	texts := []string{
		"war attack killed dead death crisis disaster tragedy",
		"great excellent amazing victory success breakthrough peace joy",
	}
	for _, text := range texts {
		score := Score(text)
		if score < -1 || score > 1 {
			t.Errorf("Score(%q) = %v, out of [-1, 1]", text, score)
		}
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.4, LabelPositive},
		{-0.4, LabelNegative},
		{0, LabelNeutral},
	}
	for _, tc := range cases {
		if got := Label(tc.score); got != tc.want {
			t.Errorf("Label(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	score, label := Analyze("Historic breakthrough brings hope for peace agreement")
	if score <= 0 || label != LabelPositive {
		t.Errorf("Analyze() = (%v, %q), want positive", score, label)
	}
}
