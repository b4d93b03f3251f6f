package runtime

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"price-pact/contract"
	"price-pact/domain"
	"price-pact/domain/event"
	"price-pact/errors"
	"price-pact/moderation"
	"price-pact/observability"
	"price-pact/repositories"
)

var roomCodePattern = regexp.MustCompile(`^[a-z0-9]{7}$`)

// Coordinator is the root of the system: it receives inbound actions
// from connections, runs the lifecycle guards, mutates the room store
// and publishes the resulting events.
//
// Every failure is recovered here and turned into a single unicast
// error event for the acting connection; no error crosses an action
// boundary and no partial broadcast ever happens.
//
// Calls to the settlement, mint and scoring collaborators are
// long-latency network calls and never run under a room lock: the room
// is re-locked only to fold the result back in.
type Coordinator struct {
	log        *slog.Logger
	store      *RoomStore
	registry   contract.IRegistry
	dispatcher *Dispatcher
	settler    contract.Settler
	minter     contract.Minter
	scorer     contract.Scorer
	names      moderation.NameFilter
	ledger     repositories.ILedger
	stats      *observability.Manager

	collabTimeout time.Duration
}

func NewCoordinator(
	log *slog.Logger,
	store *RoomStore,
	registry contract.IRegistry,
	dispatcher *Dispatcher,
	settler contract.Settler,
	minter contract.Minter,
	scorer contract.Scorer,
	names moderation.NameFilter,
	ledger repositories.ILedger,
	stats *observability.Manager,
	collabTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		log:           log,
		store:         store,
		registry:      registry,
		dispatcher:    dispatcher,
		settler:       settler,
		minter:        minter,
		scorer:        scorer,
		names:         names,
		ledger:        ledger,
		stats:         stats,
		collabTimeout: collabTimeout,
	}
}

// Connect registers the account's connection handle, overwriting any
// prior one (last-connection-wins, so reconnects need no logout).
func (c *Coordinator) Connect(account string, sink contract.EventSink) {
	c.registry.Register(account, sink)
	c.log.Info("Account connected", "account", account)
}

// Disconnect drops the handle, then sweeps the account out of every
// room it belongs to, broadcasting participantLeft to whoever remains
// and disposing rooms that become empty. Predictions of other
// participants are untouched.
func (c *Coordinator) Disconnect(account string, sink contract.EventSink) {
	if !c.registry.Drop(account, sink) {
		// A fresh connection already replaced this one.
		return
	}
	c.log.Info("Account disconnected", "account", account)
	for _, roomID := range c.store.RoomsWithAccount(account) {
		c.removeFromRoom(roomID, account)
	}
}

// removeFromRoom takes the account out of one room, with the
// participantLeft broadcast published under the room lock so ordering
// holds, then disposes the room if it emptied.
func (c *Coordinator) removeFromRoom(roomID, account string) bool {
	removed := false
	empty := false
	err := c.store.Mutate(roomID, func(room *domain.Room) error {
		removed = room.Remove(account)
		if !removed {
			return nil
		}
		empty = room.Empty()
		if !empty {
			snap := room.Snapshot()
			c.publish(event.ParticipantLeft{Room: snap, Account: account}, event.ScopeRoom, account, snap)
		}
		return nil
	})
	if err != nil {
		return false
	}
	if empty && c.store.Dispose(roomID) {
		c.stats.IncrRoomsDisposed()
		c.log.Info("Room disposed", "room", roomID)
	}
	return removed
}

func (c *Coordinator) CreateRoom(ctx context.Context, account string) {
	snap := c.store.Create(account)
	c.stats.IncrRoomsCreated()
	c.log.Info("Room created", "room", snap.ID, "creator", account)
	c.publish(event.RoomCreated{Room: snap}, event.ScopeActor, account, snap)
}

func (c *Coordinator) JoinRoom(ctx context.Context, roomID, account string) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}
	err = c.store.Mutate(code, func(room *domain.Room) error {
		if err := room.Join(account); err != nil {
			return err
		}
		snap := room.Snapshot()
		c.publish(event.RoomJoined{Room: snap}, event.ScopeActor, account, snap)
		c.publish(event.ParticipantJoined{Room: snap, Account: account}, event.ScopeRoomExceptActor, account, snap)
		return nil
	})
	if err != nil {
		c.fail(code, account, err)
		return
	}
	c.log.Info("Participant joined", "room", code, "account", account)
}

func (c *Coordinator) Ready(ctx context.Context, roomID, account string) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}
	err = c.store.Mutate(code, func(room *domain.Room) error {
		allReady, err := room.MarkReady(account)
		if err != nil {
			return err
		}
		snap := room.Snapshot()
		if allReady {
			c.publish(event.RoomReady{Room: snap}, event.ScopeRoom, account, snap)
		} else {
			c.publish(event.ParticipantUpdated{Room: snap}, event.ScopeRoom, account, snap)
		}
		return nil
	})
	if err != nil {
		c.fail(code, account, err)
	}
}

func (c *Coordinator) UpdateName(ctx context.Context, roomID, account, newName string) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}
	clean, err := c.names.Clean(newName)
	if err != nil {
		c.fail(code, account, err)
		return
	}
	err = c.store.Mutate(code, func(room *domain.Room) error {
		if err := room.Rename(account, clean); err != nil {
			return err
		}
		snap := room.Snapshot()
		c.publish(event.ParticipantUpdated{Room: snap}, event.ScopeRoom, account, snap)
		return nil
	})
	if err != nil {
		c.fail(code, account, err)
		return
	}
	c.log.Debug("Name updated", "room", code, "account", account, "name", clean)
}

func (c *Coordinator) StartGame(ctx context.Context, roomID, account string) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}
	err = c.store.Mutate(code, func(room *domain.Room) error {
		if err := room.Start(account); err != nil {
			return err
		}
		snap := room.Snapshot()
		c.publish(event.GameStarted{Room: snap}, event.ScopeRoom, account, snap)
		return nil
	})
	if err != nil {
		c.fail(code, account, err)
		return
	}
	c.log.Info("Game started", "room", code)
}

// Predict records the account's prediction and runs consensus
// detection. When the payload has no value but carries form data, the
// scoring collaborator computes one first (advisory, outside any lock).
// The first detection claims the single mint attempt for the room.
func (c *Coordinator) Predict(ctx context.Context, roomID, account string, value *float64, form map[string]any) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}

	var predicted float64
	switch {
	case value != nil:
		predicted = *value
	case len(form) > 0:
		scoreCtx, cancel := context.WithTimeout(ctx, c.collabTimeout)
		scored, err := c.scorer.Score(scoreCtx, form)
		cancel()
		if err != nil {
			c.log.Error("Scoring failed", "room", code, "account", account, "error", err)
			c.fail(code, account, errors.ErrScoringFailed)
			return
		}
		predicted = scored
	default:
		c.fail(code, account, errors.ErrMissingPrediction)
		return
	}

	var mintClaim *contract.MintMetadata
	var consensusValue float64
	err = c.store.Mutate(code, func(room *domain.Room) error {
		err := room.RecordPrediction(account, domain.Prediction{
			Value: predicted,
			Form:  form,
			At:    time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		result := domain.DetectConsensus(room.Predictions)
		if result.Reached && room.BeginMint() {
			consensusValue = result.Value
			mintClaim = &contract.MintMetadata{
				RoomID:           room.ID,
				ConsensusValue:   result.Value,
				ParticipantCount: len(room.Participants),
				Timestamp:        time.Now().UTC(),
			}
		}
		snap := room.Snapshot()
		c.publish(event.PredictionMade{
			Room:      snap,
			Account:   account,
			Value:     predicted,
			Consensus: result.Reached,
		}, event.ScopeRoom, account, snap)
		return nil
	})
	if err != nil {
		c.fail(code, account, err)
		return
	}
	if mintClaim != nil {
		go c.runMint(code, account, consensusValue, *mintClaim)
	}
}

// runMint calls the mint collaborator off-lock, then re-enters the room
// to record the artifact. Failure releases the claim so a later predict
// can retry; only the triggering connection hears about it.
func (c *Coordinator) runMint(roomID, actor string, value float64, meta contract.MintMetadata) {
	room, err := c.store.Get(roomID)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.collabTimeout)
	defer cancel()

	artifact, err := c.minter.Mint(ctx, room.Creator, meta)
	if err != nil {
		c.log.Error("Mint failed", "room", roomID, "error", err)
		_ = c.store.Mutate(roomID, func(room *domain.Room) error {
			room.FailMint()
			return nil
		})
		c.fail(roomID, actor, errors.ErrMintFailed)
		return
	}

	err = c.store.Mutate(roomID, func(room *domain.Room) error {
		if err := room.CompleteMint(value, artifact); err != nil {
			return err
		}
		snap := room.Snapshot()
		c.publish(event.ConsensusReached{Room: snap, Value: value, Artifact: artifact}, event.ScopeRoom, actor, snap)
		return nil
	})
	if err != nil {
		c.log.Warn("Mint result discarded", "room", roomID, "error", err)
		return
	}
	c.stats.IncrMints()
	c.log.Info("Consensus reached", "room", roomID, "value", value, "artifact", artifact.Ref)

	if err := c.ledger.Append(repositories.Record{
		Kind:    repositories.KindMint,
		Room:    roomID,
		Account: room.Creator,
		Amount:  value,
		Ref:     artifact.Ref,
		Link:    artifact.ExplorerLink,
	}); err != nil {
		c.log.Error("Ledger append failed", "room", roomID, "error", err)
	}
}

// Purchase triggers settlement for the agreed amount. The guards and
// the in-flight claim run under the room lock, so racing buyers resolve
// to exactly one settlement call; the call itself happens off-lock and
// the room is re-locked only to record the completed purchase.
func (c *Coordinator) Purchase(ctx context.Context, roomID, account string, amount float64, depositProof string) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}
	var recipient string
	err = c.store.Mutate(code, func(room *domain.Room) error {
		if room.Status == domain.StatusSettled {
			return errors.ErrAlreadySettled
		}
		if room.Find(account) == nil {
			return errors.ErrParticipantNotFound
		}
		own, ok := room.PredictionOf(account)
		if !ok {
			return errors.ErrNoPrediction
		}
		if amount <= 0 {
			if room.ConsensusReached {
				amount = room.ConsensusValue
			} else {
				amount = own.Value
			}
		}
		if err := room.BeginSettlement(); err != nil {
			return err
		}
		recipient = room.Creator
		return nil
	})
	if err != nil {
		c.fail(code, account, err)
		return
	}
	go c.runSettlement(code, account, recipient, amount, depositProof)
}

func (c *Coordinator) runSettlement(roomID, buyer, recipient string, amount float64, depositProof string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.collabTimeout)
	defer cancel()

	txRef, err := c.settler.Settle(ctx, recipient, amount, depositProof)
	if err != nil {
		c.log.Error("Settlement failed", "room", roomID, "buyer", buyer, "error", err)
		_ = c.store.Mutate(roomID, func(room *domain.Room) error {
			room.FailSettlement()
			return nil
		})
		c.fail(roomID, buyer, errors.ErrSettlementFailed)
		return
	}

	err = c.store.Mutate(roomID, func(room *domain.Room) error {
		if err := room.Settle(buyer, amount, txRef); err != nil {
			return err
		}
		snap := room.Snapshot()
		c.publish(event.PropertyPurchased{Room: snap, Purchase: *snap.Purchase}, event.ScopeRoom, buyer, snap)
		return nil
	})
	if err != nil {
		c.fail(roomID, buyer, err)
		return
	}
	c.stats.IncrSettlements()
	c.log.Info("Property purchased", "room", roomID, "buyer", buyer, "amount", amount, "tx", txRef)

	if err := c.ledger.Append(repositories.Record{
		Kind:    repositories.KindSettlement,
		Room:    roomID,
		Account: buyer,
		Amount:  amount,
		Ref:     txRef,
	}); err != nil {
		c.log.Error("Ledger append failed", "room", roomID, "error", err)
	}
}

// LeaveRoom removes the actor. Leaving a room you are no longer in is
// a silent no-op; only a missing room is reported back.
func (c *Coordinator) LeaveRoom(ctx context.Context, roomID, account string) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}
	if _, err := c.store.Get(code); err != nil {
		c.fail(code, account, err)
		return
	}
	if c.removeFromRoom(code, account) {
		c.log.Info("Participant left", "room", code, "account", account)
	}
}

func (c *Coordinator) RoomInfo(ctx context.Context, roomID, account string) {
	code, err := normalizeCode(roomID)
	if err != nil {
		c.fail(roomID, account, err)
		return
	}
	room, err := c.store.Get(code)
	if err != nil {
		c.fail(code, account, err)
		return
	}
	c.publish(event.RoomInfo{Room: room}, event.ScopeActor, account, room)
}

func (c *Coordinator) publish(e event.DomainEvent, scope event.Scope, actor string, room domain.Room) {
	c.dispatcher.Publish(Emission{
		Event:      e,
		Scope:      scope,
		Actor:      actor,
		Recipients: room.Accounts(),
		Creator:    room.Creator,
	})
}

func (c *Coordinator) fail(roomID, account string, err error) {
	c.log.Debug("Action rejected", "room", roomID, "account", account, "error", err)
	c.dispatcher.Publish(Emission{
		Event: event.Error{Room: roomID, Message: err.Error()},
		Scope: event.ScopeActor,
		Actor: account,
	})
}

// normalizeCode lowercases and validates the externally supplied room
// code before any lookup happens.
func normalizeCode(roomID string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(roomID))
	if !roomCodePattern.MatchString(code) {
		return "", errors.ErrInvalidRoomCode
	}
	return code, nil
}
