package sentiment

import (
	"math"
	"strings"
	"unicode"

	"github.com/trezcool/ustawi/core"
)

var (
	// positive and negative stems are matched as substrings of a word.
	positiveStems = []string{
		"happy", "joy", "excited", "great", "wonderful", "amazing", "excellent", "good", "love",
		"beautiful", "fantastic", "awesome", "perfect", "blessed", "grateful", "thankful", "proud",
		"succeed", "success", "win", "achieve", "accomplished", "better", "best", "hope", "hopeful",
		"confident", "optimistic", "peaceful", "calm", "relaxed", "content", "satisfied", "delighted",
		"energized", "motivated", "productive", "focused", "refreshing", "positive", "joyful",
	}
	negativeStems = []string{
		"sad", "depressed", "anxious", "worr", "stress", "stressed", "angry", "frustrated", "upset",
		"hurt", "pain", "terrible", "awful", "horrible", "bad", "worst", "hate", "fear", "scared",
		"lonely", "alone", "isolated", "overwhelm", "exhaust", "tired", "struggling", "difficult",
		"hard", "fail", "failure", "lost", "confused", "disappoint", "regret", "guilt", "shame",
		"drain", "burn", "fatigue", "restless", "overwork", "pressure", "deadline", "tense", "stuck", "hopeless",
	}
	negations = map[string]struct{}{
		"not": {}, "never": {}, "don't": {}, "doesn't": {}, "isn't": {},
		"wasn't": {}, "can't": {}, "won't": {}, "no": {}, "didn't": {},
	}

	// scorerEmotionTable is matched as substrings of a word, unlike emotionTable.
	scorerEmotionTable = []emotionKeywords{
		{"joy", []string{"happy", "joy", "excited", "delighted", "cheerful", "pleased"}},
		{"sadness", []string{"sad", "depressed", "unhappy", "miserable", "lonely", "melancholy", "drain", "tired", "exhaust"}},
		{"anger", []string{"angry", "furious", "mad", "irritated", "frustrated", "annoyed"}},
		{"fear", []string{"scared", "afraid", "anxious", "worried", "nervous", "panic"}},
		{"stress", []string{"stressed", "overwhelm", "burn", "pressure", "deadline"}},
		{"trust", []string{"trust", "confident", "secure", "safe", "believe"}},
		{"anticipation", []string{"excited", "eager", "hopeful", "anticipate"}},
	}
	allowedScorerEmotions = map[string]struct{}{
		"joy": {}, "sadness": {}, "anger": {}, "fear": {}, "trust": {}, "anticipation": {}, "stress": {},
	}
)

const negationLookahead = 2

// RuleBased scores text offline with keyword heuristics.
// It is deterministic and never fails.
func RuleBased(text string) Result {
	words := tokenize(text)

	var positives, negatives int
	detected := make([]string, 0, len(scorerEmotionTable))
	seen := make(map[string]struct{}, len(scorerEmotionTable))

	for i, word := range words {
		if _, ok := negations[word]; ok {
			// a negation flips the polarity of the next words and is not scored itself
			for j := i + 1; j < len(words) && j <= i+negationLookahead; j++ {
				if containsAny(words[j], positiveStems) {
					negatives++
				}
				if containsAny(words[j], negativeStems) {
					positives++
				}
			}
			continue
		}

		if containsAny(word, positiveStems) {
			positives++
		}
		if containsAny(word, negativeStems) {
			negatives++
		}

		for _, entry := range scorerEmotionTable {
			if _, ok := seen[entry.emotion]; ok {
				continue
			}
			if containsAny(word, entry.keywords) {
				detected = append(detected, entry.emotion)
				seen[entry.emotion] = struct{}{}
			}
		}
	}

	raw := float64(positives-negatives) / math.Max(float64(len(words))/6, 1)
	score := clamp(5+raw*4, MinScore, MaxScore)
	confidence := clamp(math.Min(1, math.Abs(raw)+float64(positives+negatives)/10), 0.4, 0.95)

	return Result{
		Score:      core.Round2(score),
		Label:      ruleBasedLabel(score),
		Confidence: int(math.Round(confidence * 100)),
		Emotions:   filterEmotions(detected),
	}
}

// ruleBasedLabel maps a 0-10 score to a Label.
// The bands are asymmetric around the neutral midpoint.
func ruleBasedLabel(score float64) Label {
	switch {
	case score >= 8:
		return VeryPositive
	case score >= 6:
		return Positive
	case score <= 2.5:
		return VeryNegative
	case score <= 4.5:
		return Negative
	default:
		return Neutral
	}
}

// tokenize lowers text, drops everything but letters, digits, underscores, whitespace
// and apostrophes, then splits on whitespace.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if isWordChar(r) || unicode.IsSpace(r) || r == '\'' {
			return r
		}
		return -1
	}, text)
	return strings.Fields(cleaned)
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

func containsAny(word string, stems []string) bool {
	for _, s := range stems {
		if strings.Contains(word, s) {
			return true
		}
	}
	return false
}

func filterEmotions(detected []string) []string {
	emotions := make([]string, 0, maxEmotions)
	for _, e := range detected {
		if _, ok := allowedScorerEmotions[e]; !ok {
			continue
		}
		emotions = append(emotions, e)
		if len(emotions) == maxEmotions {
			break
		}
	}
	return emotions
}
