package wa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	walog "go.mau.fi/whatsmeow/util/log"

	"github.com/fardannozami/habit-bot/internal/domain"
	"github.com/fardannozami/habit-bot/internal/logger"
	_ "modernc.org/sqlite"
)

var (
	ErrNotInitialized = errors.New("client not initialized")
	ErrNotLoggedIn    = errors.New("client not logged in")
)

type Service struct {
	client         *whatsmeow.Client
	dsn            string
	log            walog.Logger
	messageHandler func(ctx context.Context, client *whatsmeow.Client, evt *events.Message)
}

// NewService creates a service whose device store lives in the database
// addressed by dsn. It may be the same file the bot's own tables use.
func NewService(dsn string, log walog.Logger) *Service {
	return &Service{
		dsn: dsn,
		log: log,
	}
}

func (s *Service) Initialize(ctx context.Context) error {
	container, err := sqlstore.New(ctx, "sqlite", s.dsn, s.log.Sub("Database"))
	if err != nil {
		return fmt.Errorf("failed to initialize device store: %w", err)
	}

	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	var device *store.Device
	if len(devices) > 0 {
		device = devices[0]
	} else {
		device = container.NewDevice()
	}

	s.client = whatsmeow.NewClient(device, s.log.Sub("Client"))
	s.registerEventHandlers()

	return nil
}

func (s *Service) Connect() error {
	if s.client == nil {
		return ErrNotInitialized
	}
	if s.client.IsConnected() {
		return nil
	}
	return s.client.Connect()
}

func (s *Service) Disconnect() {
	if s.client != nil {
		s.client.Disconnect()
	}
}

func (s *Service) SetMessageHandler(handler func(ctx context.Context, client *whatsmeow.Client, evt *events.Message)) {
	s.messageHandler = handler
}

func (s *Service) registerEventHandlers() {
	s.client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			if s.messageHandler != nil {
				go s.messageHandler(context.Background(), s.client, v)
			}
		case *events.Connected:
			logger.Info("Connected to WhatsApp")
		case *events.Disconnected:
			logger.Warn("Disconnected from WhatsApp")
		case *events.LoggedOut:
			logger.Error("Logged out from WhatsApp", "reason", v.Reason.String())
		}
	})
}

func (s *Service) GetClient() *whatsmeow.Client {
	return s.client
}

func (s *Service) IsLoggedIn() bool {
	return s.client != nil && s.client.Store.ID != nil
}

// SendText sends a plain text message to chat and returns its message id.
func (s *Service) SendText(ctx context.Context, chat types.JID, text string) (string, error) {
	if s.client == nil {
		return "", ErrNotInitialized
	}
	resp, err := s.client.SendMessage(ctx, chat, &waE2E.Message{Conversation: &text})
	if err != nil {
		return "", err
	}
	return string(resp.ID), nil
}

// PostBoard sends a todo board to chatID.
func (s *Service) PostBoard(ctx context.Context, chatID, text string) (string, error) {
	chat, err := types.ParseJID(chatID)
	if err != nil {
		return "", fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return s.SendText(ctx, chat, text)
}

// EditBoard replaces the text of a board previously sent by the bot.
func (s *Service) EditBoard(ctx context.Context, chatID, messageID, text string) error {
	if s.client == nil {
		return ErrNotInitialized
	}
	chat, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	edit := s.client.BuildEdit(chat, types.MessageID(messageID), &waE2E.Message{Conversation: &text})
	_, err = s.client.SendMessage(ctx, chat, edit)
	return err
}

// SetTyping shows or clears the composing indicator in chat.
func (s *Service) SetTyping(ctx context.Context, chat types.JID, typing bool) error {
	if s.client == nil {
		return ErrNotInitialized
	}
	state := types.ChatPresencePaused
	if typing {
		state = types.ChatPresenceComposing
	}
	return s.client.SendChatPresence(ctx, chat, state, types.ChatPresenceMediaText)
}

// Ping measures one round trip to the WhatsApp servers by looking up the
// bot's own number.
func (s *Service) Ping(ctx context.Context) (time.Duration, error) {
	if s.client == nil {
		return 0, ErrNotInitialized
	}
	if s.client.Store.ID == nil {
		return 0, ErrNotLoggedIn
	}

	start := time.Now()
	if _, err := s.client.IsOnWhatsApp(ctx, []string{"+" + s.client.Store.ID.User}); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// GroupInfo fetches the metadata of a group chat. Other chats fail with
// domain.ErrNotGroup.
func (s *Service) GroupInfo(ctx context.Context, chatID string) (*domain.GroupInfo, error) {
	chat, err := types.ParseJID(chatID)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	if chat.Server != types.GroupServer {
		return nil, domain.ErrNotGroup
	}
	if s.client == nil {
		return nil, ErrNotInitialized
	}

	info, err := s.client.GetGroupInfo(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("failed to get group info: %w", err)
	}
	return toGroupInfo(info), nil
}

func (s *Service) Pair(ctx context.Context, phone string) (string, error) {
	if s.IsLoggedIn() {
		return "", fmt.Errorf("already logged in")
	}

	if !s.client.IsConnected() {
		return "", fmt.Errorf("client not connected")
	}

	// PairPhone(phone, showPushNotification, clientType, clientDisplayName)
	code, err := s.client.PairPhone(ctx, phone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		return "", err
	}

	return code, nil
}

// PrintQR connects and renders login QR codes to the terminal until the
// login flow ends.
func (s *Service) PrintQR(ctx context.Context) error {
	if s.IsLoggedIn() {
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect for QR: %w", err)
	}

	for evt := range qrChan {
		if evt.Event == "code" {
			logger.Info("Scan the QR code to log in")
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
		} else {
			logger.Info("Login event", "event", evt.Event)
		}
	}
	return nil
}
