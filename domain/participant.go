// Package domain contains the core concepts of the room coordination system:
// the Room aggregate, its participants, submitted predictions and the
// consensus rule. No runtime, network, or UI logic should be added here.
package domain

import "fmt"

// Participant is one account's membership record within a room.
// Account is the unique key; DisplayName is user-settable and defaults
// to a masked rendering of the account id.
type Participant struct {
	Account     string `json:"account"`
	DisplayName string `json:"name"`
	IsOwner     bool   `json:"isOwner"`
	IsOnline    bool   `json:"isOnline"`
	IsReady     bool   `json:"isReady"`
}

func NewParticipant(account string, owner bool) Participant {
	return Participant{
		Account:     account,
		DisplayName: MaskAccount(account),
		IsOwner:     owner,
		IsOnline:    true,
	}
}

// MaskAccount renders an account id as "User abc123...wxyz".
// Short ids are shown whole; masking is cosmetic, not a privacy feature.
func MaskAccount(account string) string {
	if len(account) <= 10 {
		return fmt.Sprintf("User %s", account)
	}
	return fmt.Sprintf("User %s...%s", account[:6], account[len(account)-4:])
}
