package external

import "context"

// UserProfile is the subset of the external User entity the core consumes
// (spec.md §3: "the core only consumes user_id, name, email, role").
type UserProfile struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// UserDirectory resolves a user_id to its profile. The core never owns user
// records; this is a pure collaborator, consulted only where a component
// needs an attribute the request itself didn't carry (e.g. an email address
// to send a trip summary to).
type UserDirectory interface {
	GetProfile(ctx context.Context, userID string) (UserProfile, error)
}

// StaticUserDirectory derives a profile deterministically from userID,
// standing in for a real identity-provider-backed directory. Suitable for
// deployments where user attributes live entirely in the bearer token/
// external auth system and the core never needs to look them up directly.
type StaticUserDirectory struct {
	emailDomain string
}

// NewStaticUserDirectory builds a directory that synthesizes
// "<user_id>@<emailDomain>" addresses.
func NewStaticUserDirectory(emailDomain string) *StaticUserDirectory {
	return &StaticUserDirectory{emailDomain: emailDomain}
}

func (d *StaticUserDirectory) GetProfile(ctx context.Context, userID string) (UserProfile, error) {
	return UserProfile{UserID: userID, Email: userID + "@" + d.emailDomain, Role: "hunter"}, nil
}
