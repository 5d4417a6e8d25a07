package models

// HealthReport is served by the HTTP health endpoint.
type HealthReport struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	MOTD       string `json:"motd"`
}
