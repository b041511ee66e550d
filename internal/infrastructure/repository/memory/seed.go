package memory

import "github.com/riskibarqy/code-challenge/internal/domain/user"

const (
	UserIDAda     = "user-ada"
	UserIDGrace   = "user-grace"
	UserIDLinus   = "user-linus"
	UserIDBarbara = "user-barbara"
	UserIDKen     = "user-ken"
)

func SeedUsers() []user.Profile {
	return []user.Profile{
		{ID: UserIDAda, DisplayName: "Ada Lovelace"},
		{ID: UserIDGrace, DisplayName: "Grace Hopper"},
		{ID: UserIDLinus, DisplayName: "Linus Torvalds"},
		{ID: UserIDBarbara, DisplayName: "Barbara Liskov"},
		{ID: UserIDKen, DisplayName: "Ken Thompson"},
	}
}
