package user

// Profile is the public view of a user that challenges display.
type Profile struct {
	ID          string
	DisplayName string
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
}
