package sentiment

import "testing"

func TestLabelBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  string
	}{
		{"clearly_positive", 1.5, Positive},
		{"clearly_negative", -2.0, Negative},
		{"zero", 0, Neutral},
		{"exactly_one", 1, Neutral},
		{"exactly_minus_one", -1, Neutral},
		{"just_above_one", 1.01, Positive},
		{"just_below_minus_one", -1.01, Negative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.score); got != tt.want {
				t.Errorf("Label(%v) = %q, want %q", tt.score, got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore float64
		wantLabel string
	}{
		{"empty", "", 0, Neutral},
		{"no_lexicon_words", "the quick brown fox", 0, Neutral},
		{"positive", "that play was amazing", 4, Positive},
		{"negative", "this stream is trash", -3, Negative},
		{"mixed_cancels_out", "good but bad", 0, Neutral},
		{"case_insensitive", "AMAZING", 4, Positive},
		{"punctuation_stripped", "amazing!!!", 4, Positive},
		{"sums_weights", "awesome awesome", 8, Positive},
		{"weak_positive_is_neutral", "cool", 1, Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := Analyze(tt.text)
			if score != tt.wantScore {
				t.Errorf("Analyze(%q) score = %v, want %v", tt.text, score, tt.wantScore)
			}
			if label != tt.wantLabel {
				t.Errorf("Analyze(%q) label = %q, want %q", tt.text, label, tt.wantLabel)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"can't stop", []string{"can't", "stop"}},
		{"a-b c_d", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		got := tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
