package sentiment

import "strings"

const maxEmotions = 3

type emotionKeywords struct {
	emotion  string
	keywords []string
}

// emotionTable is matched against whole whitespace-separated words.
var emotionTable = []emotionKeywords{
	{"joy", []string{"happy", "excited", "grateful", "love", "wonderful", "amazing", "smile"}},
	{"sadness", []string{"sad", "unhappy", "cry", "lonely", "depressed", "down"}},
	{"anger", []string{"angry", "mad", "frustrated", "annoyed", "furious"}},
	{"fear", []string{"scared", "afraid", "anxious", "worried", "terrified"}},
	{"surprise", []string{"surprised", "amazed", "shocked", "astonished"}},
	{"trust", []string{"trust", "confident", "believe", "secure"}},
	{"anticipation", []string{"hopeful", "eager", "expect", "waiting", "excited"}},
}

// ExtractEmotions returns up to 3 emotions whose keywords appear as exact words in text,
// in emotionTable order. Punctuation is not stripped: "happy!" does not match "happy".
func ExtractEmotions(text string) []string {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = struct{}{}
	}

	emotions := make([]string, 0, maxEmotions)
	for _, entry := range emotionTable {
		for _, k := range entry.keywords {
			if _, ok := words[k]; ok {
				emotions = append(emotions, entry.emotion)
				break
			}
		}
		if len(emotions) == maxEmotions {
			break
		}
	}
	return emotions
}
