package domain

import "time"

// Prediction is one account's current price submission. Resubmitting
// replaces the previous entry; removal of the participant removes it.
type Prediction struct {
	Value float64        `json:"value"`
	Form  map[string]any `json:"formData,omitempty"`
	At    time.Time      `json:"submittedAt"`
}

// MintArtifact is the receipt issued by the mint collaborator when
// consensus is first reached.
type MintArtifact struct {
	Ref          string `json:"artifactReference"`
	ExplorerLink string `json:"explorerLink"`
}

// Purchase records the one settlement a room can carry.
type Purchase struct {
	Buyer  string  `json:"buyer"`
	Amount float64 `json:"amount"`
	TxRef  string  `json:"transactionReference"`
}
