package collaborators

import (
	"context"
	"net/http"
	"time"
)

// SettlementClient asks the settlement service to transfer the agreed
// amount to the recipient. The service verifies the buyer's deposit
// before transferring; a refusal surfaces as an error here and leaves
// room state untouched.
type SettlementClient struct {
	http *http.Client
	url  string
}

func NewSettlementClient(url string, timeout time.Duration) *SettlementClient {
	return &SettlementClient{
		http: &http.Client{Timeout: timeout},
		url:  url,
	}
}

type settlementRequest struct {
	Recipient      string  `json:"recipient"`
	Amount         float64 `json:"amount"`
	ProofOfDeposit string  `json:"proofOfDeposit"`
}

type settlementResponse struct {
	TransactionReference string `json:"transactionReference"`
}

func (c *SettlementClient) Settle(ctx context.Context, recipient string, amount float64, depositProof string) (string, error) {
	req := settlementRequest{Recipient: recipient, Amount: amount, ProofOfDeposit: depositProof}
	var out settlementResponse
	if err := postJSON(ctx, c.http, c.url, req, &out); err != nil {
		return "", err
	}
	return out.TransactionReference, nil
}
