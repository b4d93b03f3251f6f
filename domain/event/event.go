// Package event defines the closed set of outbound events the
// coordinator can emit. Each event names itself after the wire-level
// event it becomes; payload fields are exactly the ones the transport
// serializes.
package event

import (
	"price-pact/domain"
)

// Scope selects the delivery audience for one emission.
type Scope int

const (
	// ScopeActor delivers to the acting connection only.
	ScopeActor Scope = iota
	// ScopeRoomExceptActor delivers to every room member but the actor.
	ScopeRoomExceptActor
	// ScopeRoom delivers to every room member, actor included.
	ScopeRoom
)

// View tags a room-carrying payload with the recipient's framing.
// The underlying room data is identical either way.
type View string

const (
	ViewOwner  View = "owner"
	ViewJoiner View = "joiner"
)

type DomainEvent interface {
	Name() string
	RoomID() string
}

type RoomCreated struct{ Room domain.Room }

func (e RoomCreated) Name() string   { return "roomCreated" }
func (e RoomCreated) RoomID() string { return e.Room.ID }

type RoomJoined struct{ Room domain.Room }

func (e RoomJoined) Name() string   { return "roomJoined" }
func (e RoomJoined) RoomID() string { return e.Room.ID }

type ParticipantJoined struct {
	Room    domain.Room
	Account string
}

func (e ParticipantJoined) Name() string   { return "participantJoined" }
func (e ParticipantJoined) RoomID() string { return e.Room.ID }

type ParticipantUpdated struct{ Room domain.Room }

func (e ParticipantUpdated) Name() string   { return "participantUpdated" }
func (e ParticipantUpdated) RoomID() string { return e.Room.ID }

type RoomReady struct{ Room domain.Room }

func (e RoomReady) Name() string   { return "roomReady" }
func (e RoomReady) RoomID() string { return e.Room.ID }

type GameStarted struct{ Room domain.Room }

func (e GameStarted) Name() string   { return "gameStarted" }
func (e GameStarted) RoomID() string { return e.Room.ID }

// PredictionMade carries the full current prediction set plus the
// consensus flag so every participant sees the same converging picture.
type PredictionMade struct {
	Room      domain.Room
	Account   string
	Value     float64
	Consensus bool
}

func (e PredictionMade) Name() string   { return "predictionMade" }
func (e PredictionMade) RoomID() string { return e.Room.ID }

type ConsensusReached struct {
	Room     domain.Room
	Value    float64
	Artifact domain.MintArtifact
}

func (e ConsensusReached) Name() string   { return "consensusReached" }
func (e ConsensusReached) RoomID() string { return e.Room.ID }

type PropertyPurchased struct {
	Room     domain.Room
	Purchase domain.Purchase
}

func (e PropertyPurchased) Name() string   { return "propertyPurchased" }
func (e PropertyPurchased) RoomID() string { return e.Room.ID }

type ParticipantLeft struct {
	Room    domain.Room
	Account string
}

func (e ParticipantLeft) Name() string   { return "participantLeft" }
func (e ParticipantLeft) RoomID() string { return e.Room.ID }

type RoomInfo struct{ Room domain.Room }

func (e RoomInfo) Name() string   { return "roomInfo" }
func (e RoomInfo) RoomID() string { return e.Room.ID }

// Error is always unicast to the acting connection; other participants
// never observe a failed action.
type Error struct {
	Room    string
	Message string
}

func (e Error) Name() string   { return "error" }
func (e Error) RoomID() string { return e.Room }
