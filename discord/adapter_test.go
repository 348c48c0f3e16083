package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-sarah/v4"
)

// mockSession implements the session interface for testing.
type mockSession struct {
	addHandlerFunc                func(handler interface{}) func()
	openFunc                      func() error
	closeFunc                     func() error
	channelFunc                   func(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	channelMessageSendFunc        func(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	channelMessageSendComplexFunc func(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func (m *mockSession) AddHandler(handler interface{}) func() {
	if m.addHandlerFunc != nil {
		return m.addHandlerFunc(handler)
	}
	return func() {}
}

func (m *mockSession) Open() error {
	if m.openFunc != nil {
		return m.openFunc()
	}
	return nil
}

func (m *mockSession) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if m.channelFunc != nil {
		return m.channelFunc(channelID, options...)
	}
	return &discordgo.Channel{ID: channelID}, nil
}

func (m *mockSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.channelMessageSendFunc != nil {
		return m.channelMessageSendFunc(channelID, content, options...)
	}
	return &discordgo.Message{}, nil
}

func (m *mockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.channelMessageSendComplexFunc != nil {
		return m.channelMessageSendComplexFunc(channelID, data, options...)
	}
	return &discordgo.Message{}, nil
}

func TestBotTypeValue(t *testing.T) {
	if DISCORD != sarah.BotType("discord") {
		t.Errorf("Expected DISCORD to be %q, got %q", "discord", DISCORD)
	}
}

func TestNewAdapter(t *testing.T) {
	t.Run("with token", func(t *testing.T) {
		config := NewConfig()
		config.Token = "test-token"

		adapter, err := NewAdapter(config)
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if adapter.config != config {
			t.Error("Config not set correctly")
		}

		s, ok := adapter.session.(*discordgo.Session)
		if !ok {
			t.Fatalf("Expected *discordgo.Session, got %T", adapter.session)
		}

		if s.Identify.Intents != config.Intents {
			t.Errorf("Expected intents %d, got %d", config.Intents, s.Identify.Intents)
		}
	})

	t.Run("without token and without session", func(t *testing.T) {
		_, err := NewAdapter(NewConfig())
		if !errors.Is(err, ErrEmptyToken) {
			t.Errorf("Expected ErrEmptyToken, got %+v", err)
		}
	})

	t.Run("with injected session", func(t *testing.T) {
		session := &discordgo.Session{}

		adapter, err := NewAdapter(NewConfig(), WithSession(session))
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if adapter.session != session {
			t.Error("Expected injected session to be used")
		}
	})
}

func TestAdapter_BotType(t *testing.T) {
	adapter := &Adapter{config: NewConfig()}

	if adapter.BotType() != DISCORD {
		t.Errorf("Expected BotType to be %q, got %q", DISCORD, adapter.BotType())
	}
}

func TestAdapter_Run(t *testing.T) {
	t.Run("Open fails", func(t *testing.T) {
		mock := &mockSession{
			openFunc: func() error {
				return fmt.Errorf("connection refused")
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		var notifiedErr error
		adapter.Run(context.Background(), func(input sarah.Input) error { return nil }, func(err error) {
			notifiedErr = err
		})

		if notifiedErr == nil {
			t.Fatal("Expected notifyErr to be called when Open fails")
		}

		if !strings.Contains(notifiedErr.Error(), "connection refused") {
			t.Errorf("Expected error to contain 'connection refused', got %q", notifiedErr.Error())
		}

		select {
		case err := <-adapter.Failed():
			if !strings.Contains(err.Error(), "connection refused") {
				t.Errorf("Expected failure to contain 'connection refused', got %q", err.Error())
			}
		default:
			t.Error("Expected the failure to be reported on Failed()")
		}
	})

	t.Run("successful Open reports no failure", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig(), session: &mockSession{}}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		adapter.Run(ctx, func(input sarah.Input) error { return nil }, func(err error) {})

		select {
		case err := <-adapter.Failed():
			t.Errorf("Unexpected failure: %+v", err)
		default:
		}
	})

	t.Run("context canceled calls Close", func(t *testing.T) {
		closed := make(chan struct{})
		mock := &mockSession{
			closeFunc: func() error {
				close(closed)
				return nil
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			adapter.Run(ctx, func(input sarah.Input) error { return nil }, func(err error) {})
			close(done)
		}()

		cancel()
		<-done

		select {
		case <-closed:
		default:
			t.Error("Expected Close to be called after context cancellation")
		}
	})

	t.Run("Close error is handled gracefully", func(t *testing.T) {
		mock := &mockSession{
			closeFunc: func() error {
				return fmt.Errorf("close failed")
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// Should not panic -- the error is logged internally
		adapter.Run(ctx, func(input sarah.Input) error { return nil }, func(err error) {})
	})

	t.Run("ready and message handlers are registered", func(t *testing.T) {
		var ready, message bool
		mock := &mockSession{
			addHandlerFunc: func(handler interface{}) func() {
				switch handler.(type) {
				case func(*discordgo.Session, *discordgo.Ready):
					ready = true
				case func(*discordgo.Session, *discordgo.MessageCreate):
					message = true
				}
				return func() {}
			},
			openFunc: func() error {
				return fmt.Errorf("stop here")
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		adapter.Run(context.Background(), func(input sarah.Input) error { return nil }, func(err error) {})

		if !ready {
			t.Error("Expected a Ready handler to be registered")
		}
		if !message {
			t.Error("Expected a MessageCreate handler to be registered")
		}
	})

	t.Run("ready event reaches registered handlers", func(t *testing.T) {
		var readyHandler func(*discordgo.Session, *discordgo.Ready)
		mock := &mockSession{
			addHandlerFunc: func(handler interface{}) func() {
				if h, ok := handler.(func(*discordgo.Session, *discordgo.Ready)); ok {
					readyHandler = h
				}
				return func() {}
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		var calls int
		var got *discordgo.Ready
		adapter.OnReady(func(_ context.Context, r *discordgo.Ready) {
			calls++
			got = r
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			adapter.Run(ctx, func(input sarah.Input) error { return nil }, func(err error) {})
			close(done)
		}()
		cancel()
		<-done

		if readyHandler == nil {
			t.Fatal("Expected a Ready handler to be registered")
		}

		r := &discordgo.Ready{User: &discordgo.User{ID: "bot", Username: "soloqbot"}}
		readyHandler(nil, r)

		if calls != 1 {
			t.Errorf("Expected 1 call, got %d", calls)
		}
		if got != r {
			t.Error("Expected the Ready event to be passed through")
		}
	})
}

func TestAdapter_handleMessage(t *testing.T) {
	botUserID := "bot-user-123"

	sessionWithState := &discordgo.Session{
		State: discordgo.NewState(),
	}
	sessionWithState.State.User = &discordgo.User{ID: botUserID}

	newMessage := func(content string, author *discordgo.User) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{
			Message: &discordgo.Message{
				ChannelID: "ch-1",
				Content:   content,
				Timestamp: time.Now(),
				Author:    author,
			},
		}
	}

	t.Run("regular message is enqueued as Input", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig()}

		var received sarah.Input
		adapter.handleMessage(sessionWithState, newMessage("!send hello", &discordgo.User{ID: "user-1"}), func(input sarah.Input) error {
			received = input
			return nil
		})

		if _, ok := received.(*Input); !ok {
			t.Fatalf("Expected *Input, got %T", received)
		}

		if received.Message() != "!send hello" {
			t.Errorf("Expected message %q, got %q", "!send hello", received.Message())
		}
	})

	t.Run("help command is wrapped as HelpInput", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig()}

		var received sarah.Input
		adapter.handleMessage(sessionWithState, newMessage("  !help ", &discordgo.User{ID: "user-1"}), func(input sarah.Input) error {
			received = input
			return nil
		})

		if _, ok := received.(*sarah.HelpInput); !ok {
			t.Errorf("Expected *sarah.HelpInput, got %T", received)
		}
	})

	t.Run("abort command is wrapped as AbortInput", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig()}

		var received sarah.Input
		adapter.handleMessage(sessionWithState, newMessage("!abort", &discordgo.User{ID: "user-1"}), func(input sarah.Input) error {
			received = input
			return nil
		})

		if _, ok := received.(*sarah.AbortInput); !ok {
			t.Errorf("Expected *sarah.AbortInput, got %T", received)
		}
	})

	t.Run("empty help command disables help detection", func(t *testing.T) {
		config := NewConfig()
		config.HelpCommand = ""
		adapter := &Adapter{config: config}

		var received sarah.Input
		adapter.handleMessage(sessionWithState, newMessage("!help", &discordgo.User{ID: "user-1"}), func(input sarah.Input) error {
			received = input
			return nil
		})

		if _, ok := received.(*Input); !ok {
			t.Errorf("Expected *Input (regular), got %T", received)
		}
	})

	t.Run("bot's own message is ignored", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig()}

		var received sarah.Input
		adapter.handleMessage(sessionWithState, newMessage("!send loop", &discordgo.User{ID: botUserID}), func(input sarah.Input) error {
			received = input
			return nil
		})

		if received != nil {
			t.Error("Bot's own message should be ignored")
		}
	})

	t.Run("session without state does not panic", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig()}

		var received sarah.Input
		adapter.handleMessage(&discordgo.Session{}, newMessage("hello", &discordgo.User{ID: "user-1"}), func(input sarah.Input) error {
			received = input
			return nil
		})

		if received == nil {
			t.Fatal("Expected input to be enqueued")
		}
	})

	t.Run("nil author is ignored", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig()}

		var received sarah.Input
		adapter.handleMessage(sessionWithState, newMessage("hello", nil), func(input sarah.Input) error {
			received = input
			return nil
		})

		if received != nil {
			t.Error("Message with nil Author should be ignored")
		}
	})

	t.Run("enqueue error is handled gracefully", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig()}

		// Should not panic when enqueue returns an error
		adapter.handleMessage(sessionWithState, newMessage("hello", &discordgo.User{ID: "user-1"}), func(input sarah.Input) error {
			return fmt.Errorf("queue full")
		})
	})
}

func TestAdapter_ResolveChannel(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig(), session: &mockSession{}}

		ch, err := adapter.ResolveChannel("123")
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}

		if ch.ID != "123" {
			t.Errorf("Expected channel %q, got %q", "123", ch.ID)
		}
	})

	t.Run("lookup failure", func(t *testing.T) {
		mock := &mockSession{
			channelFunc: func(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
				return nil, fmt.Errorf("HTTP 404 Not Found")
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		_, err := adapter.ResolveChannel("123")
		if err == nil {
			t.Fatal("Expected an error")
		}

		if !strings.Contains(err.Error(), "404") {
			t.Errorf("Expected wrapped lookup error, got %q", err.Error())
		}
	})

	t.Run("empty id", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig(), session: &mockSession{}}

		_, err := adapter.ResolveChannel("")
		if !errors.Is(err, ErrEmptyChannelID) {
			t.Errorf("Expected ErrEmptyChannelID, got %+v", err)
		}
	})
}

func TestAdapter_Post(t *testing.T) {
	t.Run("send error is returned", func(t *testing.T) {
		sendErr := errors.New("HTTP 403 Forbidden")
		mock := &mockSession{
			channelMessageSendFunc: func(channelID, content string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
				return nil, sendErr
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		err := adapter.Post("ch-1", "hello")
		if !errors.Is(err, sendErr) {
			t.Errorf("Expected wrapped send error, got %+v", err)
		}
	})

	t.Run("unsupported content", func(t *testing.T) {
		adapter := &Adapter{config: NewConfig(), session: &mockSession{}}

		err := adapter.Post("ch-1", 12345)
		if !errors.Is(err, ErrUnsupportedContent) {
			t.Errorf("Expected ErrUnsupportedContent, got %+v", err)
		}
	})
}

func TestAdapter_SendMessage(t *testing.T) {
	t.Run("string content", func(t *testing.T) {
		var gotChannelID, gotContent string
		mock := &mockSession{
			channelMessageSendFunc: func(channelID, content string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
				gotChannelID = channelID
				gotContent = content
				return &discordgo.Message{}, nil
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		adapter.SendMessage(context.Background(), sarah.NewOutputMessage(ChannelID("ch-1"), "hello world"))

		if gotChannelID != "ch-1" {
			t.Errorf("Expected channelID %q, got %q", "ch-1", gotChannelID)
		}
		if gotContent != "hello world" {
			t.Errorf("Expected content %q, got %q", "hello world", gotContent)
		}
	})

	t.Run("string content with send error", func(t *testing.T) {
		mock := &mockSession{
			channelMessageSendFunc: func(channelID, content string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
				return nil, fmt.Errorf("send failed")
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		// Should not panic, just log the error
		adapter.SendMessage(context.Background(), sarah.NewOutputMessage(ChannelID("ch-1"), "hello"))
	})

	t.Run("MessageSend content", func(t *testing.T) {
		var gotChannelID string
		var gotData *discordgo.MessageSend
		mock := &mockSession{
			channelMessageSendComplexFunc: func(channelID string, data *discordgo.MessageSend, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
				gotChannelID = channelID
				gotData = data
				return &discordgo.Message{}, nil
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{{Title: "SoloQ Report"}}}
		adapter.SendMessage(context.Background(), sarah.NewOutputMessage(ChannelID("ch-2"), msg))

		if gotChannelID != "ch-2" {
			t.Errorf("Expected channelID %q, got %q", "ch-2", gotChannelID)
		}
		if gotData != msg {
			t.Error("Expected MessageSend to be passed through")
		}
	})

	t.Run("CommandHelps content", func(t *testing.T) {
		var gotContent string
		mock := &mockSession{
			channelMessageSendFunc: func(channelID, content string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
				gotContent = content
				return &discordgo.Message{}, nil
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		helps := &sarah.CommandHelps{
			{Identifier: "send", Instruction: "Input !send <message> to relay it"},
		}
		adapter.SendMessage(context.Background(), sarah.NewOutputMessage(ChannelID("ch-3"), helps))

		if gotContent != "**send**: Input !send <message> to relay it" {
			t.Errorf("Unexpected help text %q", gotContent)
		}
	})

	t.Run("invalid destination type", func(t *testing.T) {
		mock := &mockSession{
			channelMessageSendFunc: func(channelID, content string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
				t.Error("ChannelMessageSend should not be called for invalid destination")
				return nil, nil
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		adapter.SendMessage(context.Background(), sarah.NewOutputMessage("not-a-channel-id", "hello"))
	})

	t.Run("unexpected content type", func(t *testing.T) {
		mock := &mockSession{
			channelMessageSendFunc: func(channelID, content string, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
				t.Error("ChannelMessageSend should not be called for unexpected content")
				return nil, nil
			},
		}
		adapter := &Adapter{config: NewConfig(), session: mock}

		adapter.SendMessage(context.Background(), sarah.NewOutputMessage(ChannelID("ch-1"), 12345))
	})
}

func TestMessageToInput(t *testing.T) {
	now := time.Now()
	m := &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ChannelID: "channel-123",
			Content:   "hello world",
			Timestamp: now,
			Author: &discordgo.User{
				ID:       "user-456",
				Username: "testuser",
			},
		},
	}

	input, err := MessageToInput(m)
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	if input.SenderKey() != "channel-123_user-456" {
		t.Errorf("Expected SenderKey %q, got %q", "channel-123_user-456", input.SenderKey())
	}

	if input.Message() != "hello world" {
		t.Errorf("Expected Message %q, got %q", "hello world", input.Message())
	}

	if !input.SentAt().Equal(now) {
		t.Errorf("Expected SentAt %v, got %v", now, input.SentAt())
	}

	if dest, ok := input.ReplyTo().(ChannelID); !ok || dest != "channel-123" {
		t.Errorf("Expected ReplyTo %q, got %#v", "channel-123", input.ReplyTo())
	}

	if input.Event != m {
		t.Error("Original event should be preserved in Input")
	}

	t.Run("nil author", func(t *testing.T) {
		_, err := MessageToInput(&discordgo.MessageCreate{Message: &discordgo.Message{Content: "hello"}})
		if !errors.Is(err, ErrNoAuthor) {
			t.Errorf("Expected ErrNoAuthor, got %+v", err)
		}
	})
}

func TestNewResponse(t *testing.T) {
	input := &Input{
		senderKey: "ch_user",
		text:      "!send hello",
		sentAt:    time.Now(),
		channelID: ChannelID("ch"),
	}

	resp, err := NewResponse(input, "Message sent to <#1>")
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	if resp.Content != "Message sent to <#1>" {
		t.Errorf("Expected content %q, got %v", "Message sent to <#1>", resp.Content)
	}

	t.Run("non-discord input returns error", func(t *testing.T) {
		_, err := NewResponse(sarah.NewHelpInput(input), "should fail")
		if err == nil {
			t.Fatal("Expected an error for non-discord Input")
		}
	})
}
