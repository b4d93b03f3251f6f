package errors

import "fmt"

// Sentinel errors for every rejection the coordinator can produce.
// They are matched with errors.Is at the boundary and converted into a
// single unicast error event for the acting connection.
var (
	ErrRoomNotFound          = fmt.Errorf("room not found")
	ErrParticipantNotFound   = fmt.Errorf("participant not found")
	ErrRoomNotJoinable       = fmt.Errorf("room is not available")
	ErrAlreadyInRoom         = fmt.Errorf("you are already in this room")
	ErrNotCreator            = fmt.Errorf("only the room creator can start the game")
	ErrNotEnoughParticipants = fmt.Errorf("at least two participants are required")
	ErrGameNotStarted        = fmt.Errorf("game has not started")
	ErrGameAlreadyStarted    = fmt.Errorf("game has already started")
	ErrNoPrediction          = fmt.Errorf("no prediction has been submitted")
	ErrAlreadySettled        = fmt.Errorf("room has already been settled")
	ErrConsensusAlreadySet   = fmt.Errorf("consensus has already been recorded")
	ErrInvalidRoomCode       = fmt.Errorf("room code must be 7 alphanumeric characters")
	ErrNameRejected          = fmt.Errorf("display name rejected")
	ErrScoringFailed         = fmt.Errorf("scoring service failed")
	ErrMintFailed            = fmt.Errorf("mint service failed")
	ErrSettlementFailed      = fmt.Errorf("settlement service failed")
	ErrWorkerPanic           = fmt.Errorf("worker panic")
)

// ErrMissingPrediction rejects a predict action carrying neither a
// value nor form data to score.
var ErrMissingPrediction = fmt.Errorf("prediction value or form data required")
