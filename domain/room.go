package domain

import (
	"time"

	"price-pact/errors"
)

// Room is the central aggregate: an ephemeral multi-party session in
// which participants converge on a price prediction. All methods assume
// the caller holds the room's lock (see runtime.RoomStore); guards run
// before any field is touched so a rejected action never mutates state.
type Room struct {
	ID           string                `json:"id"`
	Creator      string                `json:"creator"`
	Participants []Participant         `json:"participants"`
	Status       RoomStatus            `json:"status"`
	Ready        bool                  `json:"isReady"`
	Predictions  map[string]Prediction `json:"predictions"`

	ConsensusReached bool          `json:"consensusReached"`
	ConsensusValue   float64       `json:"consensusValue,omitempty"`
	Artifact         *MintArtifact `json:"consensusArtifact,omitempty"`
	Purchase         *Purchase     `json:"purchase,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	// mintInFlight guards the mint collaborator: at most one call per
	// consensus detection, cleared again on failure so a later
	// prediction may retry.
	mintInFlight bool

	// settleInFlight guards the settlement collaborator the same way:
	// one buyer at a time, released on failure so another purchase may
	// retry.
	settleInFlight bool
}

func NewRoom(id, creator string) *Room {
	return &Room{
		ID:           id,
		Creator:      creator,
		Participants: []Participant{NewParticipant(creator, true)},
		Status:       StatusWaiting,
		Predictions:  make(map[string]Prediction),
		CreatedAt:    time.Now().UTC(),
	}
}

// Find returns a pointer into the participant slice, or nil.
// Pointers must not outlive the room lock.
func (r *Room) Find(account string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].Account == account {
			return &r.Participants[i]
		}
	}
	return nil
}

func (r *Room) Empty() bool {
	return len(r.Participants) == 0
}

// Accounts lists current member accounts in join order.
func (r *Room) Accounts() []string {
	accounts := make([]string, len(r.Participants))
	for i, p := range r.Participants {
		accounts[i] = p.Account
	}
	return accounts
}

// Join appends a non-owner participant. Legal only while waiting.
func (r *Room) Join(account string) error {
	if r.Status != StatusWaiting {
		if r.Status == StatusStarted {
			return errors.ErrGameAlreadyStarted
		}
		return errors.ErrRoomNotJoinable
	}
	if r.Find(account) != nil {
		return errors.ErrAlreadyInRoom
	}
	r.Participants = append(r.Participants, NewParticipant(account, false))
	// A newcomer is not ready yet, so a previous all-ready state no longer holds.
	r.Ready = false
	return nil
}

// MarkReady flags the participant and reports whether the whole room is
// now ready.
func (r *Room) MarkReady(account string) (bool, error) {
	if r.Status != StatusWaiting {
		return false, errors.ErrGameAlreadyStarted
	}
	p := r.Find(account)
	if p == nil {
		return false, errors.ErrParticipantNotFound
	}
	p.IsReady = true
	for _, member := range r.Participants {
		if !member.IsReady {
			return false, nil
		}
	}
	r.Ready = true
	return true, nil
}

// Rename updates the participant's display name. The caller is expected
// to have run the name through moderation already.
func (r *Room) Rename(account, name string) error {
	p := r.Find(account)
	if p == nil {
		return errors.ErrParticipantNotFound
	}
	p.DisplayName = name
	return nil
}

// Start transitions waiting -> started. Creator only, two participants
// minimum.
func (r *Room) Start(account string) error {
	if account != r.Creator {
		return errors.ErrNotCreator
	}
	if !r.Status.CanAdvanceTo(StatusStarted) {
		if r.Status == StatusSettled {
			return errors.ErrAlreadySettled
		}
		return errors.ErrGameAlreadyStarted
	}
	if len(r.Participants) < 2 {
		return errors.ErrNotEnoughParticipants
	}
	r.Status = StatusStarted
	return nil
}

// RecordPrediction stores or overwrites the account's prediction.
// Legal only once the game has started.
func (r *Room) RecordPrediction(account string, p Prediction) error {
	switch r.Status {
	case StatusWaiting:
		return errors.ErrGameNotStarted
	case StatusSettled:
		return errors.ErrAlreadySettled
	}
	if r.Find(account) == nil {
		return errors.ErrParticipantNotFound
	}
	r.Predictions[account] = p
	return nil
}

func (r *Room) PredictionOf(account string) (Prediction, bool) {
	p, ok := r.Predictions[account]
	return p, ok
}

// Remove deletes the participant and their prediction, reporting
// whether anything was removed. Removing an absent account is a no-op.
func (r *Room) Remove(account string) bool {
	for i := range r.Participants {
		if r.Participants[i].Account == account {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			delete(r.Predictions, account)
			return true
		}
	}
	return false
}

// BeginMint claims the one mint attempt for the current consensus
// detection. Returns false when consensus is already recorded or a call
// is still in flight.
func (r *Room) BeginMint() bool {
	if r.ConsensusReached || r.mintInFlight {
		return false
	}
	r.mintInFlight = true
	return true
}

// FailMint releases the in-flight claim so a future prediction update
// may retry the mint.
func (r *Room) FailMint() {
	r.mintInFlight = false
}

// CompleteMint records the consensus value and artifact. Write-once.
func (r *Room) CompleteMint(value float64, artifact MintArtifact) error {
	if r.ConsensusReached {
		return errors.ErrConsensusAlreadySet
	}
	r.ConsensusReached = true
	r.ConsensusValue = value
	r.Artifact = &artifact
	r.mintInFlight = false
	return nil
}

// BeginSettlement claims the one settlement call a room can have in
// flight. A settled room, or one whose buyer is still waiting on the
// settlement collaborator, refuses further purchases.
func (r *Room) BeginSettlement() error {
	if r.Status == StatusSettled || r.settleInFlight {
		return errors.ErrAlreadySettled
	}
	r.settleInFlight = true
	return nil
}

// FailSettlement releases the in-flight claim so another purchase may
// retry.
func (r *Room) FailSettlement() {
	r.settleInFlight = false
}

// Settle transitions to settled and records the purchase. Write-once.
func (r *Room) Settle(buyer string, amount float64, txRef string) error {
	if !r.Status.CanAdvanceTo(StatusSettled) {
		return errors.ErrAlreadySettled
	}
	r.Status = StatusSettled
	r.Purchase = &Purchase{Buyer: buyer, Amount: amount, TxRef: txRef}
	r.settleInFlight = false
	return nil
}

// Snapshot returns a deep copy safe to hand to the dispatcher once the
// room lock is released.
func (r *Room) Snapshot() Room {
	cp := *r
	cp.Participants = make([]Participant, len(r.Participants))
	copy(cp.Participants, r.Participants)
	cp.Predictions = make(map[string]Prediction, len(r.Predictions))
	for account, p := range r.Predictions {
		cp.Predictions[account] = p
	}
	if r.Artifact != nil {
		artifact := *r.Artifact
		cp.Artifact = &artifact
	}
	if r.Purchase != nil {
		purchase := *r.Purchase
		cp.Purchase = &purchase
	}
	return cp
}
