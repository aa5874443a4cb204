package gamesync

import (
	"time"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// PredictRemaining derives the clock value to display for a participant
// from a snapshot and the current wall-clock time, without re-fetching.
// Only the participant on the clock runs down locally; everyone else
// shows the server value unchanged. Never negative.
//
// This is a local-only visual interpolation; the server stays the source
// of truth and corrects any drift on the next snapshot.
func PredictRemaining(snap *models.GameSnapshot, participantID string, now time.Time) time.Duration {
	if snap == nil {
		return 0
	}
	base, ok := snap.RemainingTimeMs[participantID]
	if !ok {
		return 0
	}

	remaining := base
	if participantID == snap.CurrentPlayerID && snap.LastTimestampMs != nil {
		elapsed := now.UnixMilli() - *snap.LastTimestampMs
		if elapsed > 0 {
			remaining -= elapsed
		}
	}
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining) * time.Millisecond
}

// ClockDisplays derives the displayable countdown for every tracked
// participant of a snapshot.
func ClockDisplays(snap *models.GameSnapshot, now time.Time) map[string]time.Duration {
	if snap == nil {
		return nil
	}
	displays := make(map[string]time.Duration, len(snap.RemainingTimeMs))
	for participantID := range snap.RemainingTimeMs {
		displays[participantID] = PredictRemaining(snap, participantID, now)
	}
	return displays
}
