package league_api_client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/clients"
)

var (
	// ErrGameNotFound means the game no longer exists on the server.
	// Terminal for a sync loop; never retried.
	ErrGameNotFound = errors.New("game not found")

	// ErrStaleTurn means the expected turn number was already consumed.
	// Retrying with the same turn number would fail again.
	ErrStaleTurn = errors.New("move rejected: stale turn number")

	// ErrIllegalMove means the server refused the move as illegal for the
	// current position.
	ErrIllegalMove = errors.New("illegal move")
)

// mapError converts HTTP status errors into the domain error taxonomy,
// keeping the server's message intact for user-facing display.
func mapError(err error) error {
	var se *clients.StatusError
	if !errors.As(err, &se) {
		return err
	}

	switch se.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: %s", ErrGameNotFound, se.Body)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrStaleTurn, se.Body)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrIllegalMove, se.Body)
	}
	return err
}
