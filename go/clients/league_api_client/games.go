package league_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// FetchState returns the state of a game, blocking server-side for up to
// waitSeconds when the version has not advanced past knownVersion. A
// response with the same version after the full wait is a normal poll
// iteration, not an error.
func (c *LeagueApiClient) FetchState(ctx context.Context, gameID string, knownVersion int64, waitSeconds int) (*models.GameSnapshot, error) {
	endpoint := fmt.Sprintf("%s/%s/state?known_version=%d&wait_seconds=%d",
		GamesEndpoint, url.PathEscape(gameID), knownVersion, waitSeconds)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(waitSeconds)*time.Second+longPollGrace)
	defer cancel()

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, mapError(err)
	}

	var snap models.GameSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}
	return &snap, nil
}

// SubmitMove submits a move for a participant. The server rejects stale
// turn numbers and illegal moves; both surface as typed errors.
func (c *LeagueApiClient) SubmitMove(ctx context.Context, req models.MoveRequest) (*models.MoveResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode move request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/moves", GamesEndpoint, url.PathEscape(req.GameID))
	body, err := c.Post(ctx, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, mapError(err)
	}

	var result models.MoveResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode move result: %w", err)
	}
	return &result, nil
}

// CreateFromState creates a new game instance seeded from a historical
// snapshot and returns its initial snapshot with a fresh id.
func (c *LeagueApiClient) CreateFromState(ctx context.Context, req models.CreateFromStateRequest) (*models.GameSnapshot, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode create request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := c.Post(ctx, GamesEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, mapError(err)
	}

	var snap models.GameSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode created game: %w", err)
	}
	return &snap, nil
}

// FinalizeTimeout asks the server to settle a game whose on-move
// participant ran out of time according to the local countdown.
func (c *LeagueApiClient) FinalizeTimeout(ctx context.Context, gameID, participantID string) (*models.FinalizeTimeoutResult, error) {
	payload, err := json.Marshal(map[string]string{"participant_id": participantID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode finalize request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/finalize-timeout", GamesEndpoint, url.PathEscape(gameID))
	body, err := c.Post(ctx, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, mapError(err)
	}

	var result models.FinalizeTimeoutResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode finalize result: %w", err)
	}
	return &result, nil
}

// DeleteGame removes a game from the server.
func (c *LeagueApiClient) DeleteGame(ctx context.Context, gameID string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s", GamesEndpoint, url.PathEscape(gameID))
	if _, err := c.Delete(ctx, endpoint); err != nil {
		return mapError(err)
	}
	return nil
}
