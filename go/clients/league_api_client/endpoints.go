package league_api_client

import "time"

const (
	// API Endpoints
	GamesEndpoint      = "/api/games"
	IdentitiesEndpoint = "/api/identities/batch"

	// Headers
	APIKeyHeader = "X-Api-Key"

	// DefaultWaitSeconds is the server-side long-poll wait. The server
	// returns earlier as soon as the state version advances.
	DefaultWaitSeconds = 25

	// longPollGrace pads the request deadline past the server-side wait
	// so a full-length poll is not cancelled client-side.
	longPollGrace = 10 * time.Second

	// requestTimeout bounds every non-polling call.
	requestTimeout = 15 * time.Second
)
