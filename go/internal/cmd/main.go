package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/clients/league_api_client"
	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/archive"
	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/eventfeed"
	chessrules "github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/games/chess"
	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/gamesync"
	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("LEAGUE_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	configPath := flag.String("config", "", "path to config file")
	gameID := flag.String("game", "", "game id to attach to")
	watchOnly := flag.Bool("watch", false, "watch only, do not accept moves")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *gameID == "" {
		log.Fatal().Msg("-game is required")
	}

	instanceID := uuid.New().String()[:8]
	log.Info().
		Str("instance", instanceID).
		Str("game_id", *gameID).
		Str("api_url", config.API.BaseURL).
		Msg("starting agentleague client")

	api := league_api_client.NewLeagueApiClient(config.API.BaseURL, config.API.Key)

	repo, err := archive.Open(config.Archive.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open game archive")
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := gamesync.NewController(api, clockwork.NewRealClock(), gamesync.ControllerConfig{
		PlayerID:     config.Player.ID,
		SourceAgent:  config.Player.SourceAgent,
		OpponentMode: models.OpponentMode(config.Player.OpponentMode),
		WaitSeconds:  config.API.WaitSeconds,
	}, gamesync.Callbacks{
		OnSnapshot: func(snap *models.GameSnapshot, live bool) {
			log.Info().
				Str("game_id", snap.ID).
				Int64("version", snap.Version).
				Bool("live", live).
				Bool("finished", snap.IsFinished).
				Msg("snapshot")
		},
		OnClocks: func(displays map[string]time.Duration) {
			event := log.Info()
			for participantID, remaining := range displays {
				event = event.Str(participantID, remaining.Round(time.Second).String())
			}
			event.Msg("clocks")
		},
		OnEvents: func(events []models.GameEvent) {
			for _, e := range events {
				log.Info().Str("type", e.Type).Str("message", e.Message).Msg("event")
			}
		},
		OnFinished: func(snap *models.GameSnapshot) {
			log.Info().Str("game_id", snap.ID).Str("winner", snap.Winner).Msg("game finished")
			if err := repo.SaveFinished(context.Background(), snap); err != nil {
				log.Warn().Err(err).Msg("failed to archive finished game")
			}
			cancel()
		},
		OnTerminal: func(err error) {
			log.Warn().Err(err).Msg("game ended or was removed")
			cancel()
		},
	})
	controller.RegisterAdvisor(models.GameTypeChess, chessrules.NewAdvisor())

	if err := controller.Load(ctx, *gameID); err != nil {
		log.Fatal().Err(err).Msg("failed to load game")
	}
	defer controller.Stop()

	if config.Feed.URL != "" {
		feed := eventfeed.New(config.Feed.URL+"/"+*gameID, clockwork.NewRealClock(), eventfeed.DefaultConfig())
		go func() {
			if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("event feed stopped")
			}
		}()
		go func() {
			for event := range feed.Events() {
				log.Info().Str("type", event.Type).Str("message", event.Message).Msg("feed event")
			}
		}()
	}

	if !*watchOnly {
		go runInputLoop(ctx, controller)
	}

	// Wait for shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	}
}

// runInputLoop reads commands from stdin: a UCI move, "undo", "redo",
// "promote <piece>", "cancel" or "quit".
func runInputLoop(ctx context.Context, controller *gamesync.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			return
		case "undo":
			snap := controller.Undo()
			printCursor(snap, controller)
		case "redo":
			snap := controller.Redo()
			printCursor(snap, controller)
		case "cancel":
			controller.CancelPending()
		case "promote":
			if len(fields) < 2 {
				fmt.Println("usage: promote <q|r|b|n>")
				continue
			}
			if _, err := controller.ProvideChoice(ctx, fields[1]); err != nil {
				log.Warn().Err(err).Msg("promotion failed")
			}
		default:
			_, err := controller.SubmitMove(ctx, models.Move{UCI: fields[0]})
			switch {
			case err == nil:
			case errors.Is(err, gamesync.ErrChoiceRequired):
				fmt.Println("promotion required: promote <q|r|b|n>")
			default:
				log.Warn().Err(err).Msg("move rejected")
			}
		}
	}
}

func printCursor(snap *models.GameSnapshot, controller *gamesync.Controller) {
	if snap == nil {
		return
	}
	fmt.Printf("viewing version %d (undo=%v redo=%v)\n", snap.Version, controller.CanUndo(), controller.CanRedo())
}
