package ws

import (
	"encoding/json"
	"fmt"

	"price-pact/contract"
	"price-pact/domain"
	"price-pact/domain/event"
)

// Outbound is the envelope every server message leaves in. View frames
// the same room data as "owner" or "joiner" depending on the recipient.
type Outbound struct {
	Event string     `json:"event"`
	View  event.View `json:"view,omitempty"`
	Data  any        `json:"data"`
}

type roomData struct {
	Room domain.Room `json:"room"`
}

type participantData struct {
	Room    domain.Room `json:"room"`
	Account string      `json:"account"`
}

type predictionData struct {
	Room             domain.Room `json:"room"`
	Account          string      `json:"account"`
	Value            float64     `json:"value"`
	ConsensusReached bool        `json:"consensusReached"`
}

type consensusData struct {
	Room     domain.Room         `json:"room"`
	Value    float64             `json:"value"`
	Artifact domain.MintArtifact `json:"artifact"`
}

type purchaseData struct {
	Room     domain.Room     `json:"room"`
	Purchase domain.Purchase `json:"purchase"`
}

type errorData struct {
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

// Encode turns a framed delivery into its wire representation.
func Encode(d contract.Delivery) ([]byte, error) {
	out := Outbound{Event: d.Event.Name(), View: d.View}
	switch e := d.Event.(type) {
	case event.RoomCreated:
		out.Data = roomData{Room: e.Room}
	case event.RoomJoined:
		out.Data = roomData{Room: e.Room}
	case event.ParticipantJoined:
		out.Data = participantData{Room: e.Room, Account: e.Account}
	case event.ParticipantUpdated:
		out.Data = roomData{Room: e.Room}
	case event.RoomReady:
		out.Data = roomData{Room: e.Room}
	case event.GameStarted:
		out.Data = roomData{Room: e.Room}
	case event.PredictionMade:
		out.Data = predictionData{Room: e.Room, Account: e.Account, Value: e.Value, ConsensusReached: e.Consensus}
	case event.ConsensusReached:
		out.Data = consensusData{Room: e.Room, Value: e.Value, Artifact: e.Artifact}
	case event.PropertyPurchased:
		out.Data = purchaseData{Room: e.Room, Purchase: e.Purchase}
	case event.ParticipantLeft:
		out.Data = participantData{Room: e.Room, Account: e.Account}
	case event.RoomInfo:
		out.Data = roomData{Room: e.Room}
	case event.Error:
		// Errors carry no framing: same payload for every recipient.
		out.View = ""
		out.Data = errorData{RoomID: e.Room, Message: e.Message}
	default:
		return nil, fmt.Errorf("unknown event type %T", d.Event)
	}
	return json.Marshal(out)
}
