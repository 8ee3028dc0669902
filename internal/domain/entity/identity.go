package entity

// Identity is the account record owned by the identity provider.
// This system only reads it.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}
