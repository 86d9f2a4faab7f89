package sentiment

import (
	"reflect"
	"testing"
)

func TestRuleBased(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Result
	}{
		{
			name: "empty text",
			text: "",
			want: Result{Score: 5, Label: Neutral, Confidence: 40, Emotions: []string{}},
		},
		{
			name: "positive",
			text: "I am happy",
			want: Result{Score: 9, Label: VeryPositive, Confidence: 95, Emotions: []string{"joy"}},
		},
		{
			name: "negated positive",
			text: "I am not happy",
			want: Result{Score: 5, Label: Neutral, Confidence: 40, Emotions: []string{"joy"}},
		},
		{
			name: "punctuation stripped",
			text: "Great day!!!",
			want: Result{Score: 9, Label: VeryPositive, Confidence: 95, Emotions: []string{}},
		},
		{
			name: "failed exam",
			text: "I failed my exam and feel terrible and hopeless",
			want: Result{Score: 0, Label: VeryNegative, Confidence: 95, Emotions: []string{}},
		},
		{
			name: "stress emotions deduplicated",
			text: "Overwhelmed by deadlines and pressure",
			want: Result{Score: 0, Label: VeryNegative, Confidence: 95, Emotions: []string{"stress"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RuleBased(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RuleBased() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRuleBased_Negation(t *testing.T) {
	plain := RuleBased("I am happy")
	negated := RuleBased("I am not happy")
	if negated.Score >= plain.Score {
		t.Errorf("negated score %v should be lower than %v", negated.Score, plain.Score)
	}

	plain = RuleBased("I feel sad")
	negated = RuleBased("I don't feel sad")
	if negated.Score <= plain.Score {
		t.Errorf("negated score %v should be higher than %v", negated.Score, plain.Score)
	}
}

func TestRuleBased_Invariants(t *testing.T) {
	texts := []string{
		"",
		"   ",
		"!!!???",
		"a",
		"I'm never going to win this, not good, not happy, never calm",
		"happy happy happy happy happy happy happy happy happy happy happy happy",
		"sad stressed tired exhausted burnt out lonely anxious worried hopeless stuck",
		"Today was okay. Lunch with friends, then the library until 9pm.",
		"Je suis très fatigué 😴 mais content",
	}
	for _, text := range texts {
		got := RuleBased(text)
		if !got.Label.IsValid() {
			t.Errorf("RuleBased(%q) label %q is not valid", text, got.Label)
		}
		if got.Score < MinScore || got.Score > MaxScore {
			t.Errorf("RuleBased(%q) score %v out of range", text, got.Score)
		}
		if got.Confidence < 40 || got.Confidence > 95 {
			t.Errorf("RuleBased(%q) confidence %v out of range", text, got.Confidence)
		}
		if len(got.Emotions) > maxEmotions {
			t.Errorf("RuleBased(%q) returned %d emotions", text, len(got.Emotions))
		}
		if again := RuleBased(text); !reflect.DeepEqual(got, again) {
			t.Errorf("RuleBased(%q) is not deterministic: %+v != %+v", text, got, again)
		}
	}
}
