package models

type (
	// ServerStatus is the JSON document carried by the Status Response packet.
	ServerStatus struct {
		Version     Version     `json:"version"`
		Players     Players     `json:"players"`
		Description Description `json:"description"`
	}

	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	}

	Players struct {
		Max    int      `json:"max"`
		Online int      `json:"online"`
		Sample []Sample `json:"sample,omitempty"`
	}

	Description struct {
		Text string `json:"text"`
	}

	Sample struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
)
