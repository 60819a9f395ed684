package wordstats

import (
	"reflect"
	"testing"
)

func TestFrequenciesCountsAcrossTexts(t *testing.T) {
	texts := []string{
		"Economy rebounds as markets rally",
		"Markets rally continues into second week",
		"Economy shows signs of steady growth",
	}

	got := Frequencies(texts, 3)
	want := []WordCount{
		{Word: "economy", Count: 2},
		{Word: "markets", Count: 2},
		{Word: "rally", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Frequencies() = %v, want %v", got, want)
	}
}

func TestFrequenciesSkipsStopwordsAndShortTokens(t *testing.T) {
	got := Frequencies([]string{"The cat and the dog ran to it"}, 0)
	for _, wc := range got {
		if wc.Word == "the" || wc.Word == "and" || wc.Word == "to" || wc.Word == "it" {
			t.Errorf("stopword or short token %q kept", wc.Word)
		}
	}
}

func TestFrequenciesSkipsNumbers(t *testing.T) {
	got := Frequencies([]string{"Inflation hits 2024 high at 7.5 percent"}, 0)
	for _, wc := range got {
		if wc.Word == "2024" || wc.Word == "7.5" {
			t.Errorf("numeric token %q kept", wc.Word)
		}
	}
}

func TestFrequenciesTopNCaps(t *testing.T) {
	texts := []string{"alpha beta gamma delta epsilon zeta"}
	got := Frequencies(texts, 2)
	if len(got) != 2 {
		t.Errorf("got %d entries, want 2", len(got))
	}
}

func TestFrequenciesEmptyInput(t *testing.T) {
	if got := Frequencies(nil, 10); len(got) != 0 {
		t.Errorf("Frequencies(nil) = %v, want empty", got)
	}
}

func TestFrequenciesStableTieOrder(t *testing.T) {
	got := Frequencies([]string{"zebra apple zebra apple"}, 0)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Word != "apple" || got[1].Word != "zebra" {
		t.Errorf("tie order = %v, want alphabetical", got)
	}
}
