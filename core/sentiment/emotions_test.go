package sentiment

import (
	"reflect"
	"testing"
)

func TestExtractEmotions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "no keyword", text: "went to class then had lunch", want: []string{}},
		{name: "single", text: "I feel so happy today", want: []string{"joy"}},
		{name: "case insensitive", text: "SCARED of the exam", want: []string{"fear"}},
		{name: "table order", text: "excited but worried", want: []string{"joy", "fear", "anticipation"}},
		{name: "punctuation is not stripped", text: "happy! sad.", want: []string{}},
		{name: "no substring match", text: "downtown unhappily", want: []string{}},
		{name: "at most three", text: "happy sad angry scared surprised", want: []string{"joy", "sadness", "anger"}},
		{name: "one tag per emotion", text: "happy love smile", want: []string{"joy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractEmotions(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractEmotions() = %v, want %v", got, tt.want)
			}
		})
	}
}
