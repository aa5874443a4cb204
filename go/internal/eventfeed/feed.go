// Package eventfeed subscribes to the platform's WebSocket broadcast of
// game events (moves, chat, lifecycle notices). It only delivers events;
// formatting and display belong to the consumer.
package eventfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/iliagerman1985/agentleague-aws-hackathone-sub002/go/internal/models"
)

// Config holds connection tuning for the feed.
type Config struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	ReconnectDelay time.Duration
	BufferSize     int
}

// DefaultConfig returns the default feed configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		ReconnectDelay: 2 * time.Second,
		BufferSize:     64,
	}
}

// Feed is a reconnecting WebSocket subscription for one game's events.
type Feed struct {
	url    string
	config Config
	clock  clockwork.Clock
	dialer *websocket.Dialer
	events chan models.GameEvent
}

func New(url string, clock clockwork.Clock, config Config) *Feed {
	return &Feed{
		url:    url,
		config: config,
		clock:  clock,
		dialer: websocket.DefaultDialer,
		events: make(chan models.GameEvent, config.BufferSize),
	}
}

// Events is the stream of decoded events. Slow consumers lose events
// rather than blocking the read loop.
func (f *Feed) Events() <-chan models.GameEvent {
	return f.events
}

// Run connects and consumes until ctx is cancelled, reconnecting with a
// fixed delay after any connection failure.
func (f *Feed) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			log.Warn().Str("url", f.url).Err(err).Msg("event feed dial failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-f.clock.After(f.config.ReconnectDelay):
			}
			continue
		}

		log.Debug().Str("url", f.url).Msg("event feed connected")
		f.consume(ctx, conn)

		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.clock.After(f.config.ReconnectDelay):
		}
	}
}

// consume reads events from one connection until it fails or ctx ends.
func (f *Feed) consume(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		return nil
	})

	// Pings keep the connection alive; closing the connection on ctx
	// cancellation unblocks the read loop below.
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go func() {
		ticker := f.clock.NewTicker(f.config.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				conn.Close()
				return
			case <-ticker.Chan():
				deadline := time.Now().Add(f.config.WriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("event feed read failed")
			}
			return
		}

		var event models.GameEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Warn().Err(err).Msg("dropping undecodable event")
			continue
		}

		select {
		case f.events <- event:
		default:
			log.Warn().Str("event_id", event.ID).Msg("event buffer full, dropping event")
		}
	}
}
