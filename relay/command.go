package relay

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
	"github.com/rehabot/soloqbot/discord"
)

const (
	// CommandName is the literal following the prefix.
	CommandName = "send"

	// DefaultPrefix marks a message as a command.
	DefaultPrefix = "!"
)

// CommandPattern matches prefix+send followed by whitespace or the end of the message.
func CommandPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + CommandName + `(?:\s+|$)`)
}

type sendCommand struct {
	relay   *Relay
	pattern *regexp.Regexp
	usage   string
}

func newSendCommand(r *Relay, prefix string) *sendCommand {
	return &sendCommand{
		relay:   r,
		pattern: CommandPattern(prefix),
		usage:   fmt.Sprintf("Usage: %s%s <message>", prefix, CommandName),
	}
}

func (c *sendCommand) execute(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	body := strings.TrimSpace(c.pattern.ReplaceAllString(input.Message(), ""))
	if body == "" {
		return discord.NewResponse(input, c.usage)
	}

	ch, err := c.relay.Send(body)
	if err != nil {
		logger.Errorf("Failed to relay message: %+v", err)
		if errors.Is(err, ErrChannelNotFound) {
			return discord.NewResponse(input, "Channel not found.")
		}
		return discord.NewResponse(input, "Failed to send message.")
	}

	if dest, ok := input.ReplyTo().(discord.ChannelID); ok && dest == discord.ChannelID(ch.ID) {
		return nil, nil
	}
	return discord.NewResponse(input, fmt.Sprintf("Message sent to %s", ch.Mention()))
}

// NewSendCommandProps builds the command that relays its argument to the Relay's channel.
// A confirmation is returned to the invoking channel unless it is the target itself.
func NewSendCommandProps(r *Relay, prefix string) (*sarah.CommandProps, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	cmd := newSendCommand(r, prefix)

	return sarah.NewCommandPropsBuilder().
		BotType(discord.DISCORD).
		Identifier(CommandName).
		MatchPattern(cmd.pattern).
		Func(cmd.execute).
		Instruction(fmt.Sprintf("Input %s%s <message> to post the message to <#%s>.", prefix, CommandName, r.channelID)).
		Build()
}
