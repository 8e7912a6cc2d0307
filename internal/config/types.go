package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName      string
	Port        string
	Turso       TursoConfig
	Auth        AuthConfig
	Slack       SlackConfig
	ProjectID   string
	OptionsFile string
	// Origins allowed to call the API from a browser.
	AllowedOrigins []string
	Catalog        Catalog
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type AuthConfig struct {
	Password     string
	PasswordHash string
	TokenSecret  string
	TokenTTL     time.Duration
	// Login attempts allowed per minute and per client, with Burst extra attempts.
	LoginRate  int
	LoginBurst int
}

type SlackConfig struct {
	Token     string
	ChannelID string
	DryRun    bool
}

// Catalog is the set of enumerated options offered to the presentation layer.
// Empty lists impose no restriction.
type Catalog struct {
	TournamentTitles []string `yaml:"tournament_titles" json:"tournament_titles"`
	Courts           []Court  `yaml:"courts" json:"courts"`
	Groups           []string `yaml:"groups" json:"groups"`
	RoundTypes       []string `yaml:"round_types" json:"round_types"`
	Genders          []string `yaml:"genders" json:"genders"`
	MatchTypes       []string `yaml:"match_types" json:"match_types"`
}

// Court identifies one official court page.
type Court struct {
	Tournament string `yaml:"tournament" json:"tournament"`
	Place      string `yaml:"place" json:"place"`
	Court      string `yaml:"court" json:"court"`
}
