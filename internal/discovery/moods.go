package discovery

import "strings"

// Mood is a fixed listening mood with the keywords searched for it.
type Mood struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Icon             string   `json:"icon"`
	Color            string   `json:"color"`
	FallbackKeywords []string `json:"fallbackKeywords"`
}

var moods = []Mood{
	{
		ID:               "energetic",
		Name:             "Energetic",
		Description:      "Vibrant tracks full of energy",
		Icon:             "⚡",
		Color:            "#FB7185",
		FallbackKeywords: []string{"upbeat", "energetic", "fast", "party", "dance"},
	},
	{
		ID:               "melancholic",
		Name:             "Melancholic",
		Description:      "For introspective, emotional moments",
		Icon:             "🌧️",
		Color:            "#8B5CF6",
		FallbackKeywords: []string{"melancholic", "sad", "emotional", "slow", "ballad"},
	},
	{
		ID:               "relaxed",
		Name:             "Relaxed",
		Description:      "Calm and peaceful sounds",
		Icon:             "🌊",
		Color:            "#22D3EE",
		FallbackKeywords: []string{"chill", "relaxed", "calm", "ambient", "peaceful"},
	},
	{
		ID:               "festive",
		Name:             "Festive",
		Description:      "Celebration and pure joy",
		Icon:             "🎉",
		Color:            "#A855F7",
		FallbackKeywords: []string{"party", "celebration", "festive", "fun", "happy"},
	},
	{
		ID:               "focused",
		Name:             "Focused",
		Description:      "Made for work and concentration",
		Icon:             "🎯",
		Color:            "#22D3EE",
		FallbackKeywords: []string{"focus", "study", "work", "concentration", "instrumental"},
	},
	{
		ID:               "romantic",
		Name:             "Romantic",
		Description:      "For special moments together",
		Icon:             "💜",
		Color:            "#C084FC",
		FallbackKeywords: []string{"romantic", "love", "smooth", "sensual", "intimate"},
	},
}

// Moods returns a copy of the mood catalog.
func Moods() []Mood {
	out := make([]Mood, len(moods))
	copy(out, moods)
	return out
}

// MoodByID looks up a mood, ignoring case.
func MoodByID(id string) (Mood, bool) {
	for _, m := range moods {
		if strings.EqualFold(m.ID, strings.TrimSpace(id)) {
			return m, true
		}
	}
	return Mood{}, false
}

// MoodProfile is the search and naming profile for a mood.
type MoodProfile struct {
	SearchKeywords      []string `json:"searchKeywords"`
	PlaylistName        string   `json:"playlistName"`
	PlaylistDescription string   `json:"playlistDescription"`
	ExtraHints          []string `json:"extraHints"`
}

// FallbackProfile builds the static profile for m, naming it after the first genre when one is given.
func FallbackProfile(m Mood, genres []string) MoodProfile {
	suffix := "Discovery"
	if len(genres) > 0 {
		suffix = genres[0]
	}
	keywords := make([]string, len(m.FallbackKeywords))
	copy(keywords, m.FallbackKeywords)

	return MoodProfile{
		SearchKeywords:      keywords,
		PlaylistName:        m.Name + " " + suffix,
		PlaylistDescription: m.Description,
		ExtraHints:          []string{},
	}
}
