package models

// Privacy values accepted on a user profile.
const (
	PrivacyEveryone = "everyone"
	PrivacyContacts = "contacts"
	PrivacyNobody   = "nobody"
)

// User is the durable identity record. Identity is the lookup key (phone
// number or username) and is immutable once registered.
type User struct {
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	// CredentialHash is the bcrypt hash of the password; never serialized
	// to clients (see Summary).
	CredentialHash string `json:"credential_hash"`
	Avatar         string `json:"avatar,omitempty"`
	Privacy        string `json:"privacy"`
	TS             int64  `json:"ts"`
}

// UserSummary is the public projection returned by register/login/contact
// sync. It must never carry the credential hash.
type UserSummary struct {
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Privacy  string `json:"privacy,omitempty"`
}

// Summary returns the public view of a user.
func (u User) Summary() UserSummary {
	return UserSummary{Identity: u.Identity, Name: u.Name, Avatar: u.Avatar, Privacy: u.Privacy}
}
