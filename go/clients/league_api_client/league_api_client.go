package league_api_client

import (
	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/clients"
)

// LeagueApiClient talks to the agent-league REST backend: game state
// long polls, move submission, branching, timeout finalization and
// identity lookups.
type LeagueApiClient struct {
	*clients.BaseClient
}

func NewLeagueApiClient(baseURL, apiKey string) *LeagueApiClient {
	client := &LeagueApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader(APIKeyHeader, apiKey)
	client.SetHeader("Content-Type", "application/json")
	// Long polls outlive any sensible client-wide timeout; every call in
	// this package carries its own context deadline instead.
	client.SetTimeout(0)

	return client
}
