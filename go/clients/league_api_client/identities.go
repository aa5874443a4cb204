package league_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

type identitiesBatchRequest struct {
	VersionIDs []string `json:"version_ids"`
}

type identitiesBatchResponse struct {
	Identities []models.Identity `json:"identities"`
}

// GetIdentitiesBatch resolves agent version ids to display identities in
// a single round trip.
func (c *LeagueApiClient) GetIdentitiesBatch(ctx context.Context, versionIDs []string) ([]models.Identity, error) {
	payload, err := json.Marshal(identitiesBatchRequest{VersionIDs: versionIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode identities request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := c.Post(ctx, IdentitiesEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, mapError(err)
	}

	var resp identitiesBatchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode identities response: %w", err)
	}
	return resp.Identities, nil
}
