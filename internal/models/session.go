package models

import "strings"

// Theme identifies one of the horror settings the service can generate
// scenarios for.
type Theme string

const (
	ThemeHauntedHouse   Theme = "haunted_house"
	ThemeZombieOutbreak Theme = "zombie_outbreak"
	ThemeSlasherMovie   Theme = "slasher_movie"
	ThemeAlienInvasion  Theme = "alien_invasion"
	ThemeDeepSeaTerror  Theme = "deep_sea_terror"
)

// Themes lists every theme the service knows about, in menu order.
var Themes = []Theme{
	ThemeHauntedHouse,
	ThemeZombieOutbreak,
	ThemeSlasherMovie,
	ThemeAlienInvasion,
	ThemeDeepSeaTerror,
}

var themeNames = map[Theme]string{
	ThemeHauntedHouse:   "Haunted House",
	ThemeZombieOutbreak: "Zombie Outbreak",
	ThemeSlasherMovie:   "Slasher Movie",
	ThemeAlienInvasion:  "Alien Invasion",
	ThemeDeepSeaTerror:  "Deep Sea Terror",
}

// DisplayName returns a human readable name for the theme.
func (t Theme) DisplayName() string {
	if name, ok := themeNames[t]; ok {
		return name
	}
	return strings.ReplaceAll(string(t), "_", " ")
}

// Session identifies one game instance joined by this client. It is
// immutable for the lifetime of the session except Theme, which may be
// changed before the game starts.
type Session struct {
	Code           string `json:"session_code"`
	PlayerID       int    `json:"player_id"`
	PlayerName     string `json:"player_name"`
	Theme          Theme  `json:"theme"`
	TotalQuestions int    `json:"total_questions"`
	IsHost         bool   `json:"is_host"`
}

// NormalizeSessionCode upper-cases a session code so comparisons are
// case-insensitive everywhere.
func NormalizeSessionCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
