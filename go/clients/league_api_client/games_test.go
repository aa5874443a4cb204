package league_api_client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

func TestFetchStateRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.URL.Path; got != "/api/games/g1/state" {
			t.Errorf("path = %s", got)
		}
		if got := r.URL.Query().Get("known_version"); got != "4" {
			t.Errorf("known_version = %s, want 4", got)
		}
		if got := r.URL.Query().Get("wait_seconds"); got != "25" {
			t.Errorf("wait_seconds = %s, want 25", got)
		}
		if got := r.Header.Get(APIKeyHeader); got != "secret" {
			t.Errorf("api key header = %s", got)
		}
		json.NewEncoder(w).Encode(models.GameSnapshot{ID: "g1", Version: 5, CurrentPlayerID: "p1"})
	}))
	defer server.Close()

	client := NewLeagueApiClient(server.URL, "secret")
	snap, err := client.FetchState(context.Background(), "g1", 4, 25)
	if err != nil {
		t.Fatalf("fetch state: %v", err)
	}
	if snap.Version != 5 || snap.CurrentPlayerID != "p1" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestSubmitMoveEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/api/games/g1/moves" {
			t.Errorf("path = %s", got)
		}
		var req models.MoveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Move.UCI != "e7e8" || req.Move.Promotion != "q" || req.ExpectedTurnNumber != 12 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(models.MoveResult{NewState: &models.GameSnapshot{ID: "g1", Version: 13}})
	}))
	defer server.Close()

	client := NewLeagueApiClient(server.URL, "secret")
	result, err := client.SubmitMove(context.Background(), models.MoveRequest{
		GameID:             "g1",
		PlayerID:           "p1",
		Move:               models.Move{UCI: "e7e8", Promotion: "q"},
		ExpectedTurnNumber: 12,
	})
	if err != nil {
		t.Fatalf("submit move: %v", err)
	}
	if result.NewState.Version != 13 {
		t.Fatalf("new state version = %d, want 13", result.NewState.Version)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, "game removed", ErrGameNotFound},
		{"gone", http.StatusGone, "game expired", ErrGameNotFound},
		{"stale turn", http.StatusConflict, "turn 12 already played", ErrStaleTurn},
		{"illegal move", http.StatusUnprocessableEntity, "king is in check", ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tt.body, tt.status)
			}))
			defer server.Close()

			client := NewLeagueApiClient(server.URL, "secret")
			_, err := client.SubmitMove(context.Background(), models.MoveRequest{GameID: "g1"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			// The server's message is passed through for display.
			if !strings.Contains(err.Error(), tt.body) {
				t.Fatalf("err %q should carry the server message %q", err, tt.body)
			}
		})
	}
}

func TestCreateFromState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/games" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var req models.CreateFromStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Seed == nil || req.Seed.Version != 7 || req.OpponentMode != models.OpponentModeAgent {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(models.GameSnapshot{ID: "g2", Version: 1})
	}))
	defer server.Close()

	client := NewLeagueApiClient(server.URL, "secret")
	snap, err := client.CreateFromState(context.Background(), models.CreateFromStateRequest{
		Seed:         &models.GameSnapshot{ID: "g1", Version: 7},
		SourceAgent:  "agent-7",
		OpponentMode: models.OpponentModeAgent,
		Side:         "p1",
	})
	if err != nil {
		t.Fatalf("create from state: %v", err)
	}
	if snap.ID != "g2" {
		t.Fatalf("branched game id = %s, want g2", snap.ID)
	}
}

func TestFinalizeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/api/games/g1/finalize-timeout" {
			t.Errorf("path = %s", got)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["participant_id"] != "p1" {
			t.Errorf("participant_id = %s, want p1", req["participant_id"])
		}
		json.NewEncoder(w).Encode(models.FinalizeTimeoutResult{
			NewState:   &models.GameSnapshot{ID: "g1", Version: 6, IsFinished: true},
			IsFinished: true,
		})
	}))
	defer server.Close()

	client := NewLeagueApiClient(server.URL, "secret")
	result, err := client.FinalizeTimeout(context.Background(), "g1", "p1")
	if err != nil {
		t.Fatalf("finalize timeout: %v", err)
	}
	if !result.IsFinished || result.NewState.Version != 6 {
		t.Fatalf("result = %+v", result)
	}
}

func TestDeleteGame(t *testing.T) {
	var deleted bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/api/games/g1" {
			deleted = true
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewLeagueApiClient(server.URL, "secret")
	if err := client.DeleteGame(context.Background(), "g1"); err != nil {
		t.Fatalf("delete game: %v", err)
	}
	if !deleted {
		t.Fatalf("DELETE request never arrived")
	}
}

func TestGetIdentitiesBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req identitiesBatchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.VersionIDs) != 2 {
			t.Errorf("version_ids = %v", req.VersionIDs)
		}
		json.NewEncoder(w).Encode(identitiesBatchResponse{Identities: []models.Identity{
			{VersionID: "v1", DisplayName: "Alpha"},
			{VersionID: "v2", DisplayName: "Beta"},
		}})
	}))
	defer server.Close()

	client := NewLeagueApiClient(server.URL, "secret")
	identities, err := client.GetIdentitiesBatch(context.Background(), []string{"v1", "v2"})
	if err != nil {
		t.Fatalf("get identities: %v", err)
	}
	if len(identities) != 2 || identities[0].DisplayName != "Alpha" {
		t.Fatalf("identities = %+v", identities)
	}
}
