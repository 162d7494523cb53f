package models

// Identity is the per-request caller identity derived by the auth layer
// from a bearer token or a session cookie. It mirrors the identity
// provider's claims; it is not the persisted User record.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}
