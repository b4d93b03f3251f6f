package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"price-pact/contract"
	"price-pact/domain"
	"price-pact/domain/event"
)

func TestEncode_RoomEventCarriesViewAndName(t *testing.T) {
	req := require.New(t)
	room := domain.NewRoom("abc1234", "creator").Snapshot()

	frame, err := Encode(contract.Delivery{
		Event: event.RoomCreated{Room: room},
		View:  event.ViewOwner,
	})
	req.NoError(err)

	var out map[string]json.RawMessage
	req.NoError(json.Unmarshal(frame, &out))
	req.JSONEq(`"roomCreated"`, string(out["event"]))
	req.JSONEq(`"owner"`, string(out["view"]))

	var data struct {
		Room domain.Room `json:"room"`
	}
	req.NoError(json.Unmarshal(out["data"], &data))
	req.Equal("abc1234", data.Room.ID)
	req.Equal("waiting", string(data.Room.Status))
}

func TestEncode_PredictionMade(t *testing.T) {
	req := require.New(t)
	room := domain.NewRoom("abc1234", "creator")
	_ = room.Join("bob")
	_ = room.Start("creator")
	_ = room.RecordPrediction("bob", domain.Prediction{Value: 150})

	frame, err := Encode(contract.Delivery{
		Event: event.PredictionMade{Room: room.Snapshot(), Account: "bob", Value: 150, Consensus: false},
		View:  event.ViewJoiner,
	})
	req.NoError(err)

	var out struct {
		Event string `json:"event"`
		Data  struct {
			Account          string  `json:"account"`
			Value            float64 `json:"value"`
			ConsensusReached bool    `json:"consensusReached"`
		} `json:"data"`
	}
	req.NoError(json.Unmarshal(frame, &out))
	req.Equal("predictionMade", out.Event)
	req.Equal("bob", out.Data.Account)
	req.Equal(150.0, out.Data.Value)
	req.False(out.Data.ConsensusReached)
}

func TestEncode_ErrorOmitsView(t *testing.T) {
	req := require.New(t)

	frame, err := Encode(contract.Delivery{
		Event: event.Error{Room: "abc1234", Message: "room not found"},
		View:  event.ViewOwner,
	})
	req.NoError(err)

	var out map[string]json.RawMessage
	req.NoError(json.Unmarshal(frame, &out))
	req.NotContains(out, "view")
	req.JSONEq(`{"roomId":"abc1234","message":"room not found"}`, string(out["data"]))
}

func TestSink_ConsumeAndClose(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	ctx := context.Background()
	d := contract.Delivery{Event: event.Error{Message: "x"}}

	// The buffer takes one delivery; the next one is dropped, not blocked
	req.NoError(sink.Consume(ctx, d))
	req.ErrorIs(sink.Consume(ctx, d), ErrSinkFull)

	<-sink.Deliveries()

	// After close, Consume refuses instead of panicking on a closed channel
	sink.Close()
	sink.Close() // idempotent
	req.ErrorIs(sink.Consume(ctx, d), ErrSinkClosed)

	_, open := <-sink.Deliveries()
	req.False(open)
}
