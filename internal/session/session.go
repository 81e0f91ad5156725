package session

// UserSummary is the authenticated user as reported by the backend. It is
// immutable on the client except through an explicit profile update; Role is
// never mutated client-side.
type UserSummary struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// Credentials is the durable token pair. The access token is short-lived and
// sent with each authenticated request; the refresh token is only ever used
// to obtain a new access token.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no usable credential is present.
func (credentials Credentials) Empty() bool {
	return credentials.AccessToken == "" && credentials.RefreshToken == ""
}
