package models

// Status is an ephemeral append-only post. There is no update path; old
// statuses age out via retention.
type Status struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text,omitempty"`
	File   string `json:"file,omitempty"`
	TS     int64  `json:"ts"`
}
