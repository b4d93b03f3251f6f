package ws

import (
	"github.com/go-playground/validator/v10"
)

// Action names accepted on the wire.
const (
	ActionCreateRoom  = "createRoom"
	ActionJoinRoom    = "joinRoom"
	ActionReady       = "ready"
	ActionUpdateName  = "updateName"
	ActionStartGame   = "startGame"
	ActionPredict     = "predict"
	ActionPurchase    = "purchase"
	ActionLeaveRoom   = "leaveRoom"
	ActionGetRoomInfo = "getRoomInfo"
)

// Inbound is the single envelope every client message arrives in.
// Fields irrelevant to the action are simply left empty by clients.
type Inbound struct {
	Action  string         `json:"action" validate:"required,oneof=createRoom joinRoom ready updateName startGame predict purchase leaveRoom getRoomInfo"`
	RoomID  string         `json:"roomId" validate:"required_unless=Action createRoom"`
	NewName string         `json:"newName" validate:"required_if=Action updateName"`
	Value   *float64       `json:"prediction"`
	Form    map[string]any `json:"formData"`
	Amount  float64        `json:"amount" validate:"gte=0"`
	Proof   string         `json:"proofOfDeposit"`
}

func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
