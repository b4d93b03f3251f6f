package collaborators

import (
	"context"
	"net/http"
	"time"

	"price-pact/contract"
	"price-pact/domain"
)

// MintClient asks the mint service to issue the commemorative artifact
// once a room first reaches consensus.
type MintClient struct {
	http *http.Client
	url  string
}

func NewMintClient(url string, timeout time.Duration) *MintClient {
	return &MintClient{
		http: &http.Client{Timeout: timeout},
		url:  url,
	}
}

type mintRequest struct {
	Recipient string       `json:"recipient"`
	Metadata  mintMetadata `json:"metadata"`
}

type mintMetadata struct {
	RoomID           string    `json:"roomId"`
	ConsensusValue   float64   `json:"consensusValue"`
	ParticipantCount int       `json:"participantCount"`
	Timestamp        time.Time `json:"timestamp"`
}

type mintResponse struct {
	ArtifactReference string `json:"artifactReference"`
	ExplorerLink      string `json:"explorerLink"`
}

func (c *MintClient) Mint(ctx context.Context, recipient string, meta contract.MintMetadata) (domain.MintArtifact, error) {
	req := mintRequest{
		Recipient: recipient,
		Metadata: mintMetadata{
			RoomID:           meta.RoomID,
			ConsensusValue:   meta.ConsensusValue,
			ParticipantCount: meta.ParticipantCount,
			Timestamp:        meta.Timestamp,
		},
	}
	var out mintResponse
	if err := postJSON(ctx, c.http, c.url, req, &out); err != nil {
		return domain.MintArtifact{}, err
	}
	return domain.MintArtifact{Ref: out.ArtifactReference, ExplorerLink: out.ExplorerLink}, nil
}
