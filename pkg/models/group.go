package models

// Group maps a group id to its member identities. Membership is fixed at
// creation time.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
	TS      int64    `json:"ts"`
}

// HasMember reports whether identity is part of the group.
func (g Group) HasMember(identity string) bool {
	for _, m := range g.Members {
		if m == identity {
			return true
		}
	}
	return false
}
