package collaborators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"price-pact/contract"
)

func TestScoringClient_Score(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("application/json", r.Header.Get("Content-Type"))

		var features map[string]any
		req.NoError(json.NewDecoder(r.Body).Decode(&features))
		req.Equal(42.0, features["surface"])

		_ = json.NewEncoder(w).Encode(map[string]any{"prediction": 187.5})
	}))
	defer server.Close()

	client := NewScoringClient(server.URL, time.Second)
	got, err := client.Score(context.Background(), map[string]any{"surface": 42.0})
	req.NoError(err)
	req.Equal(187.5, got)
}

func TestScoringClient_NonOKStatus(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewScoringClient(server.URL, time.Second)
	_, err := client.Score(context.Background(), map[string]any{})
	req.Error(err)
	req.Contains(err.Error(), "503")
}

func TestMintClient_Mint(t *testing.T) {
	req := require.New(t)
	when := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Recipient string `json:"recipient"`
			Metadata  struct {
				RoomID           string    `json:"roomId"`
				ConsensusValue   float64   `json:"consensusValue"`
				ParticipantCount int       `json:"participantCount"`
				Timestamp        time.Time `json:"timestamp"`
			} `json:"metadata"`
		}
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.Equal("creator", body.Recipient)
		req.Equal("abc1234", body.Metadata.RoomID)
		req.Equal(150.0, body.Metadata.ConsensusValue)
		req.Equal(3, body.Metadata.ParticipantCount)
		req.True(when.Equal(body.Metadata.Timestamp))

		_ = json.NewEncoder(w).Encode(map[string]string{
			"artifactReference": "artifact-1",
			"explorerLink":      "https://explorer/artifact-1",
		})
	}))
	defer server.Close()

	client := NewMintClient(server.URL, time.Second)
	artifact, err := client.Mint(context.Background(), "creator", contract.MintMetadata{
		RoomID:           "abc1234",
		ConsensusValue:   150,
		ParticipantCount: 3,
		Timestamp:        when,
	})
	req.NoError(err)
	req.Equal("artifact-1", artifact.Ref)
	req.Equal("https://explorer/artifact-1", artifact.ExplorerLink)
}

func TestSettlementClient_Settle(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Recipient      string  `json:"recipient"`
			Amount         float64 `json:"amount"`
			ProofOfDeposit string  `json:"proofOfDeposit"`
		}
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.Equal("creator", body.Recipient)
		req.Equal(150.0, body.Amount)
		req.Equal("proof-1", body.ProofOfDeposit)

		_ = json.NewEncoder(w).Encode(map[string]string{"transactionReference": "tx-42"})
	}))
	defer server.Close()

	client := NewSettlementClient(server.URL, time.Second)
	txRef, err := client.Settle(context.Background(), "creator", 150, "proof-1")
	req.NoError(err)
	req.Equal("tx-42", txRef)
}

func TestSettlementClient_RefusalIsAnError(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient deposit", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewSettlementClient(server.URL, time.Second)
	_, err := client.Settle(context.Background(), "creator", 150, "proof-1")
	req.Error(err)
}

func TestClient_ContextCancellation(t *testing.T) {
	req := require.New(t)

	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	client := NewScoringClient(server.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Score(ctx, map[string]any{})
	req.Error(err)
}
