package domain

// RoomStatus is the lifecycle position of a room. It only ever moves
// forward: waiting -> started -> settled.
type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusStarted RoomStatus = "started"
	StatusSettled RoomStatus = "settled"
)

var statusRank = map[RoomStatus]int{
	StatusWaiting: 0,
	StatusStarted: 1,
	StatusSettled: 2,
}

// CanAdvanceTo reports whether moving to next is a forward transition.
func (s RoomStatus) CanAdvanceTo(next RoomStatus) bool {
	return statusRank[next] > statusRank[s]
}
