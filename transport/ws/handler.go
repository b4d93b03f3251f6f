package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"price-pact/contract"
	"price-pact/domain/event"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Handler upgrades HTTP requests to websocket connections and bridges
// them onto the coordinator: inbound frames become actions, framed
// deliveries become outbound frames.
type Handler struct {
	log         *slog.Logger
	coordinator contract.ICoordinator
	validate    *validator.Validate
	upgrader    websocket.Upgrader
	sinkBuffer  int
}

func NewHandler(log *slog.Logger, coordinator contract.ICoordinator, sinkBuffer int) *Handler {
	return &Handler{
		log:         log,
		coordinator: coordinator,
		validate:    NewValidator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sinkBuffer: sinkBuffer,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		http.Error(w, "missing account query parameter", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "account", account, "error", err)
		return
	}

	sink := NewSink(h.sinkBuffer)
	h.coordinator.Connect(account, sink)

	go h.writePump(conn, account, sink)
	h.readPump(conn, account, sink)
}

// readPump owns the connection lifecycle: when the read loop exits, the
// account is disconnected and the sink closed, which in turn stops the
// write pump.
func (h *Handler) readPump(conn *websocket.Conn, account string, sink *Sink) {
	defer func() {
		h.coordinator.Disconnect(account, sink)
		sink.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Websocket read error", "account", account, "error", err)
			}
			return
		}
		h.dispatch(sink, account, raw)
	}
}

// dispatch decodes one inbound frame and routes it to the coordinator.
// Malformed frames are answered directly on the connection's sink; they
// never reach the coordinator.
func (h *Handler) dispatch(sink *Sink, account string, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		h.reject(sink, account, "", "malformed message")
		return
	}
	if err := h.validate.Struct(in); err != nil {
		h.reject(sink, account, in.RoomID, "invalid message: "+err.Error())
		return
	}

	ctx := context.Background()
	switch in.Action {
	case ActionCreateRoom:
		h.coordinator.CreateRoom(ctx, account)
	case ActionJoinRoom:
		h.coordinator.JoinRoom(ctx, in.RoomID, account)
	case ActionReady:
		h.coordinator.Ready(ctx, in.RoomID, account)
	case ActionUpdateName:
		h.coordinator.UpdateName(ctx, in.RoomID, account, in.NewName)
	case ActionStartGame:
		h.coordinator.StartGame(ctx, in.RoomID, account)
	case ActionPredict:
		h.coordinator.Predict(ctx, in.RoomID, account, in.Value, in.Form)
	case ActionPurchase:
		h.coordinator.Purchase(ctx, in.RoomID, account, in.Amount, in.Proof)
	case ActionLeaveRoom:
		h.coordinator.LeaveRoom(ctx, in.RoomID, account)
	case ActionGetRoomInfo:
		h.coordinator.RoomInfo(ctx, in.RoomID, account)
	}
}

// reject answers a malformed frame directly on the connection's sink,
// bypassing the dispatcher.
func (h *Handler) reject(sink *Sink, account, roomID, message string) {
	h.log.Debug("Message rejected", "account", account, "reason", message)
	err := sink.Consume(context.Background(), contract.Delivery{
		Event: event.Error{Room: roomID, Message: message},
	})
	if err != nil {
		h.log.Warn("Failed to deliver rejection", "account", account, "error", err)
	}
}

// writePump drains the sink into the connection and keeps it alive with
// pings. It exits when the sink is closed or a write fails.
func (h *Handler) writePump(conn *websocket.Conn, account string, sink *Sink) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case d, ok := <-sink.Deliveries():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := Encode(d)
			if err != nil {
				h.log.Error("Failed to encode event", "account", account, "event", d.Event.Name(), "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.log.Debug("Websocket write failed", "account", account, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
