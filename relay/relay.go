package relay

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/rehabot/soloqbot/discord"
)

// DefaultStartupMessage is announced once the gateway connection is ready.
const DefaultStartupMessage = "Bot is online."

// Poster resolves and writes to Discord channels.
// *discord.Adapter satisfies this interface.
type Poster interface {
	ResolveChannel(channelID discord.ChannelID) (*discordgo.Channel, error)
	Post(channelID discord.ChannelID, content interface{}) error
}

var _ Poster = (*discord.Adapter)(nil)

// Relay forwards content to a single preconfigured channel.
type Relay struct {
	poster         Poster
	channelID      discord.ChannelID
	startupMessage string
	announced      atomic.Bool
}

// New creates a Relay targeting channelID.
func New(poster Poster, channelID discord.ChannelID, startupMessage string) *Relay {
	if startupMessage == "" {
		startupMessage = DefaultStartupMessage
	}

	return &Relay{
		poster:         poster,
		channelID:      channelID,
		startupMessage: startupMessage,
	}
}

// ChannelID returns the target channel.
func (r *Relay) ChannelID() discord.ChannelID {
	return r.channelID
}

// Announce posts the startup message. It satisfies discord.ReadyHandler.
// Only the first READY of the process is announced; later ones follow gateway reconnects.
func (r *Relay) Announce(_ context.Context, _ *discordgo.Ready) {
	if !r.announced.CompareAndSwap(false, true) {
		logger.Debugf("Startup message already sent, skipping")
		return
	}

	if _, err := r.Send(r.startupMessage); err != nil {
		logger.Errorf("Failed to send startup message: %+v", err)
		return
	}
	logger.Infof("Startup message sent to %s", r.channelID)
}

// Send resolves the target channel and posts content to it.
func (r *Relay) Send(content interface{}) (*discordgo.Channel, error) {
	ch, err := r.poster.ResolveChannel(r.channelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChannelNotFound, err)
	}

	if err := r.poster.Post(discord.ChannelID(ch.ID), content); err != nil {
		return ch, err
	}
	return ch, nil
}
