package models

// ChatText is the smallest valid chat component.
type ChatText struct {
	Text string `json:"text"`
}
