package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/chatmood/backend/config"
)

// twitchConn adapts a gempir IRC client to the Conn interface. The client
// auto-reconnects on transport drops; the reconciler only replaces it when
// the channel set changes.
type twitchConn struct {
	client    *twitch.Client
	identity  string
	connected atomic.Bool
}

// NewTwitchDialer returns a DialFunc that builds IRC connections wired into
// the given pipeline. With no OAuth token configured the connection is
// anonymous (read-only), which is all ingestion needs. Each inbound message
// is dispatched on its own goroutine; writes survive cancellation of the
// supplied root context so shutdown can drain them.
func NewTwitchDialer(ctx context.Context, cfg *config.Config, pipeline *Pipeline) DialFunc {
	return func() Conn {
		var client *twitch.Client
		identity := strings.ToLower(cfg.TwitchBotUsername)
		if cfg.TwitchBotUsername != "" && cfg.TwitchOAuthToken != "" {
			client = twitch.NewClient(cfg.TwitchBotUsername, cfg.TwitchOAuthToken)
		} else {
			client = twitch.NewAnonymousClient()
			identity = ""
		}
		c := &twitchConn{client: client, identity: identity}

		client.OnConnect(func() {
			c.connected.Store(true)
			slog.Info("twitch chat connected")
		})
		client.OnReconnectMessage(func(msg twitch.ReconnectMessage) {
			// Server-initiated reconnect; the client handles it itself.
			slog.Info("twitch chat reconnect requested by server")
		})
		client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
			ev := Event{
				Channel:        msg.Channel,
				Username:       msg.User.Name,
				DisplayName:    msg.User.DisplayName,
				ExternalUserID: msg.User.ID,
				Text:           msg.Message,
				Badges:         msg.User.Badges,
				Color:          msg.User.Color,
				Self:           c.identity != "" && strings.EqualFold(msg.User.Name, c.identity),
			}
			pipeline.Dispatch(ctx, ev)
		})
		return c
	}
}

func (c *twitchConn) Start(channels []string) {
	c.client.Join(channels...)
	go func() {
		err := c.client.Connect()
		c.connected.Store(false)
		if err != nil && !errors.Is(err, twitch.ErrClientDisconnected) {
			slog.Error("twitch chat connection ended", slog.Any("err", err))
		}
	}()
}

func (c *twitchConn) Close() error {
	c.connected.Store(false)
	err := c.client.Disconnect()
	if errors.Is(err, twitch.ErrConnectionIsNotOpen) {
		return nil
	}
	return err
}

func (c *twitchConn) Connected() bool {
	return c.connected.Load()
}
