package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
)

const (
	// DISCORD is a designated sarah.BotType for Discord integration.
	DISCORD sarah.BotType = "discord"
)

// session abstracts the discordgo.Session methods used by the Adapter.
// *discordgo.Session satisfies this interface.
type session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelID represents a Discord channel as sarah.OutputDestination.
type ChannelID string

var _ sarah.OutputDestination = ChannelID("")

// ReadyHandler is called each time the gateway reports a READY event.
type ReadyHandler func(ctx context.Context, ready *discordgo.Ready)

// AdapterOption defines a function signature for Adapter's functional options.
type AdapterOption func(adapter *Adapter)

// WithSession creates an AdapterOption with the given *discordgo.Session.
// If this option is not given, NewAdapter creates a new session from Config.Token.
func WithSession(session *discordgo.Session) AdapterOption {
	return func(adapter *Adapter) {
		adapter.session = session
	}
}

// Adapter is a sarah.Adapter implementation for Discord.
type Adapter struct {
	config  *Config
	session session

	mu            sync.Mutex
	readyHandlers []ReadyHandler

	failedOnce sync.Once
	failed     chan error
}

var _ sarah.Adapter = (*Adapter)(nil)

// NewAdapter creates a new Adapter with the given Config and options.
func NewAdapter(config *Config, options ...AdapterOption) (*Adapter, error) {
	adapter := &Adapter{
		config: config,
	}

	for _, opt := range options {
		opt(adapter)
	}

	if adapter.session == nil {
		if config.Token == "" {
			return nil, ErrEmptyToken
		}

		s, err := discordgo.New("Bot " + config.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to create Discord session: %w", err)
		}
		s.Identify.Intents = config.Intents
		adapter.session = s
	}

	return adapter, nil
}

// OnReady registers a handler for the gateway READY event.
// Handlers must be registered before Run is called.
func (a *Adapter) OnReady(handler ReadyHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.readyHandlers = append(a.readyHandlers, handler)
}

// Failed returns a channel that receives the error when the gateway connection cannot be opened.
// go-sarah stops the bot in that case, so callers waiting on the process should stop too.
func (a *Adapter) Failed() <-chan error {
	return a.failures()
}

func (a *Adapter) failures() chan error {
	a.failedOnce.Do(func() {
		a.failed = make(chan error, 1)
	})
	return a.failed
}

// BotType returns a designated BotType for Discord integration.
func (a *Adapter) BotType() sarah.BotType {
	return DISCORD
}

// Run establishes a connection with Discord and blocks until the context is canceled.
func (a *Adapter) Run(ctx context.Context, enqueueInput func(sarah.Input) error, notifyErr func(error)) {
	a.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.handleReady(ctx, r)
	})
	a.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		a.handleMessage(s, m, enqueueInput)
	})

	err := a.session.Open()
	if err != nil {
		select {
		case a.failures() <- fmt.Errorf("failed to open Discord session: %w", err):
		default:
		}
		notifyErr(sarah.NewBotNonContinuableError(fmt.Sprintf("failed to open Discord session: %s", err.Error())))
		return
	}

	// Block until the context is canceled.
	<-ctx.Done()

	if closeErr := a.session.Close(); closeErr != nil {
		logger.Errorf("Failed to close Discord session: %+v", closeErr)
	}
}

func (a *Adapter) handleReady(ctx context.Context, r *discordgo.Ready) {
	if r.User != nil {
		logger.Infof("%s has connected to Discord!", r.User.String())
	}

	a.mu.Lock()
	handlers := make([]ReadyHandler, len(a.readyHandlers))
	copy(handlers, a.readyHandlers)
	a.mu.Unlock()

	for _, h := range handlers {
		h(ctx, r)
	}
}

// handleMessage processes an incoming Discord message and routes it to enqueueInput.
func (a *Adapter) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate, enqueueInput func(sarah.Input) error) {
	input, err := MessageToInput(m)
	if err != nil {
		// System messages carry no author.
		logger.Debugf("Skipping message: %+v", err)
		return
	}

	// Ignore messages from the bot itself.
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	var enqueueErr error
	trimmed := strings.TrimSpace(input.Message())
	if a.config.HelpCommand != "" && trimmed == a.config.HelpCommand {
		enqueueErr = enqueueInput(sarah.NewHelpInput(input))
	} else if a.config.AbortCommand != "" && trimmed == a.config.AbortCommand {
		enqueueErr = enqueueInput(sarah.NewAbortInput(input))
	} else {
		enqueueErr = enqueueInput(input)
	}
	if enqueueErr != nil {
		logger.Errorf("Failed to enqueue input: %+v", enqueueErr)
	}
}

// ResolveChannel looks up the channel behind the given ID.
func (a *Adapter) ResolveChannel(channelID ChannelID) (*discordgo.Channel, error) {
	if channelID == "" {
		return nil, ErrEmptyChannelID
	}

	ch, err := a.session.Channel(string(channelID))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel %s: %w", channelID, err)
	}
	return ch, nil
}

// Post sends the given content to the channel and reports any failure to the caller.
// Supported contents are string, *discordgo.MessageSend and *sarah.CommandHelps.
func (a *Adapter) Post(channelID ChannelID, content interface{}) error {
	id := string(channelID)

	switch c := content.(type) {
	case string:
		if _, err := a.session.ChannelMessageSend(id, c); err != nil {
			return fmt.Errorf("failed to send message to %s: %w", id, err)
		}

	case *discordgo.MessageSend:
		if _, err := a.session.ChannelMessageSendComplex(id, c); err != nil {
			return fmt.Errorf("failed to send complex message to %s: %w", id, err)
		}

	case *sarah.CommandHelps:
		lines := make([]string, 0, len(*c))
		for _, h := range *c {
			lines = append(lines, fmt.Sprintf("**%s**: %s", h.Identifier, h.Instruction))
		}
		if _, err := a.session.ChannelMessageSend(id, strings.Join(lines, "\n")); err != nil {
			return fmt.Errorf("failed to send help message to %s: %w", id, err)
		}

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedContent, content)
	}

	return nil
}

// SendMessage sends the given message to Discord.
// Failures are logged and never propagated.
func (a *Adapter) SendMessage(_ context.Context, output sarah.Output) {
	destination, ok := output.Destination().(ChannelID)
	if !ok {
		logger.Errorf("Destination is not instance of ChannelID. %#v.", output.Destination())
		return
	}

	if err := a.Post(destination, output.Content()); err != nil {
		logger.Errorf("Failed to deliver output: %+v", err)
	}
}

// Input is a sarah.Input implementation that represents a received Discord message.
type Input struct {
	Event     *discordgo.MessageCreate
	senderKey string
	text      string
	sentAt    time.Time
	channelID ChannelID
}

var _ sarah.Input = (*Input)(nil)

// SenderKey returns a unique key representing the sender in the channel.
func (i *Input) SenderKey() string {
	return i.senderKey
}

// Message returns the received text.
func (i *Input) Message() string {
	return i.text
}

// SentAt returns when the message was sent.
func (i *Input) SentAt() time.Time {
	return i.sentAt
}

// ReplyTo returns the Discord channel where the message was received.
func (i *Input) ReplyTo() sarah.OutputDestination {
	return i.channelID
}

// MessageToInput converts a *discordgo.MessageCreate event to *Input.
func MessageToInput(m *discordgo.MessageCreate) (*Input, error) {
	if m.Author == nil {
		return nil, ErrNoAuthor
	}

	return &Input{
		Event:     m,
		senderKey: fmt.Sprintf("%s_%s", m.ChannelID, m.Author.ID),
		text:      m.Content,
		sentAt:    m.Timestamp,
		channelID: ChannelID(m.ChannelID),
	}, nil
}

// NewResponse creates a *sarah.CommandResponse with the given message.
func NewResponse(input sarah.Input, message interface{}) (*sarah.CommandResponse, error) {
	if _, ok := input.(*Input); !ok {
		return nil, fmt.Errorf("%T is not a *discord.Input", input)
	}

	return &sarah.CommandResponse{
		Content: message,
	}, nil
}
