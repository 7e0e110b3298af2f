// Package mood holds the immutable mood catalog used to validate and score entries.
package mood

import "strings"

// Mood is display and scoring metadata for a mood identifier.
type Mood struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Emoji        string `json:"emoji"`
	Score        int    `json:"score"`
	Prompt       string `json:"prompt"`
	PixabayQuery string `json:"pixabayQuery"`
}

// catalog order is the display order.
var catalog = []Mood{
	{ID: "happy", Label: "Happy", Emoji: "😊", Score: 8, Prompt: "What's making you smile today?", PixabayQuery: "happy joy sunshine"},
	{ID: "excited", Label: "Excited", Emoji: "🤩", Score: 9, Prompt: "What are you looking forward to?", PixabayQuery: "celebration fireworks"},
	{ID: "grateful", Label: "Grateful", Emoji: "🙏", Score: 9, Prompt: "What are you thankful for today?", PixabayQuery: "gratitude nature"},
	{ID: "peaceful", Label: "Peaceful", Emoji: "😌", Score: 7, Prompt: "What brings you peace right now?", PixabayQuery: "calm lake zen"},
	{ID: "hopeful", Label: "Hopeful", Emoji: "🌱", Score: 7, Prompt: "What are you hoping for?", PixabayQuery: "sunrise new beginning"},
	{ID: "proud", Label: "Proud", Emoji: "🏆", Score: 8, Prompt: "What did you accomplish recently?", PixabayQuery: "mountain summit success"},
	{ID: "neutral", Label: "Neutral", Emoji: "😐", Score: 5, Prompt: "How was your day?", PixabayQuery: "minimal abstract"},
	{ID: "tired", Label: "Tired", Emoji: "😴", Score: 4, Prompt: "What's draining your energy?", PixabayQuery: "rest sleep night"},
	{ID: "confused", Label: "Confused", Emoji: "😕", Score: 4, Prompt: "What's on your mind that feels unclear?", PixabayQuery: "maze fog"},
	{ID: "anxious", Label: "Anxious", Emoji: "😰", Score: 3, Prompt: "What's causing you to feel uneasy?", PixabayQuery: "storm clouds"},
	{ID: "frustrated", Label: "Frustrated", Emoji: "😤", Score: 3, Prompt: "What's getting in your way?", PixabayQuery: "tangled wires"},
	{ID: "sad", Label: "Sad", Emoji: "😢", Score: 2, Prompt: "What's troubling you?", PixabayQuery: "rain window"},
	{ID: "angry", Label: "Angry", Emoji: "😠", Score: 2, Prompt: "What's making you upset?", PixabayQuery: "volcano fire"},
	{ID: "lonely", Label: "Lonely", Emoji: "🥺", Score: 2, Prompt: "Who would you like to reach out to?", PixabayQuery: "solitude empty bench"},
}

var (
	byID   map[string]Mood
	byName map[string]Mood
)

func init() {
	byID = make(map[string]Mood, len(catalog))
	byName = make(map[string]Mood, len(catalog))
	for _, m := range catalog {
		byID[m.ID] = m
		byName[strings.ToUpper(m.ID)] = m
	}
}

// ByID looks a mood up by its exact identifier.
func ByID(id string) (Mood, bool) {
	m, ok := byID[id]
	return m, ok
}

// ByName looks a mood up by name, case-insensitively.
func ByName(name string) (Mood, bool) {
	m, ok := byName[strings.ToUpper(strings.TrimSpace(name))]
	return m, ok
}

// All returns the catalog in display order.
func All() []Mood {
	out := make([]Mood, len(catalog))
	copy(out, catalog)
	return out
}
