package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/fardannozami/habit-bot/internal/app/usecase"
	"github.com/fardannozami/habit-bot/internal/config"
	"github.com/fardannozami/habit-bot/internal/infra/sqlite"
	"github.com/fardannozami/habit-bot/internal/infra/wa"
	"github.com/fardannozami/habit-bot/internal/logger"
	"github.com/fardannozami/habit-bot/internal/metrics"
	"github.com/fardannozami/habit-bot/internal/scheduler"
)

const failureReply = "Sorry, something went wrong. Please try again later."

func main() {
	// 1. Load Config, logging to stderr until the configured logger exists
	_ = logger.Init(logger.Config{})
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	// 2. Logger
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		logger.Fatal("Failed to init logger", "error", err)
	}
	if !cfg.EnvFileLoaded {
		logger.Info("No .env file found, using defaults/environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Database & Repositories
	db, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		logger.Fatal("Failed to open database", "path", cfg.SQLitePath, "error", err)
	}
	defer db.Close()

	habitRepo := sqlite.NewHabitRepository(db)
	todoRepo := sqlite.NewTodoRepository(db)
	identities := sqlite.NewIdentityResolver(db)

	// 4. Metrics
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Port != "" {
		srv := &http.Server{Addr: ":" + cfg.Port, Handler: metricsMux(m), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("Serving metrics", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	// 5. WhatsApp Service
	waService := wa.NewService(sqlite.DSN(cfg.SQLitePath), logger.WhatsApp(logger.Get(), "WhatsApp"))

	// 6. Use Cases
	todoUC := usecase.NewTodoUsecase(todoRepo, waService)
	handleMessageUC := usecase.NewHandleMessageUsecase(habitRepo, todoUC, cfg.Location, m).WithChatInfo(waService)
	resetUC := usecase.NewResetTodosUsecase(todoRepo, m)

	// 7. Daily reset
	sched := scheduler.New(cfg.Location, logger.Get())
	if err := sched.Add("reset-todos", cfg.ResetSchedule, resetUC); err != nil {
		logger.Fatal("Failed to schedule todo reset", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	// 8. Register Message Handler
	h := &messageHandler{
		cfg:        cfg,
		wa:         waService,
		identities: identities,
		commands:   handleMessageUC,
		rnd:        rand.Intn,
	}
	waService.SetMessageHandler(h.handle)

	// 9. Initialize Client (DB, Device, etc) - DO NOT CONNECT YET
	if err := waService.Initialize(ctx); err != nil {
		logger.Fatal("Failed to initialize WhatsApp service", "error", err)
	}

	// 10. Connect / Login Logic
	if err := login(ctx, cfg, waService); err != nil {
		logger.Fatal("Failed to log in", "error", err)
	}

	logger.Info("Bot is running... Press Ctrl+C to exit.", "timezone", cfg.Location.String())

	<-ctx.Done()

	logger.Info("Shutting down...")
	waService.Disconnect()
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// loginClient is the part of wa.Service that login drives.
type loginClient interface {
	IsLoggedIn() bool
	Connect() error
	Pair(ctx context.Context, phone string) (string, error)
	PrintQR(ctx context.Context) error
}

func login(ctx context.Context, cfg config.Config, waService loginClient) error {
	if waService.IsLoggedIn() {
		if err := waService.Connect(); err != nil {
			return err
		}
		logger.Info("Client is already logged in.")
		return nil
	}

	if cfg.BotPhone == "" {
		logger.Info("Not logged in. BOT_PHONE not set. Printing QR...")
		// PrintQR opens the QR channel before connecting, so no code is missed.
		return waService.PrintQR(ctx)
	}

	// Pair Code Mode: must connect first to pair
	if err := waService.Connect(); err != nil {
		return err
	}

	logger.Info("Not logged in. Attempting to pair", "phone", cfg.BotPhone)
	code, err := waService.Pair(ctx, cfg.BotPhone)
	if err != nil {
		return fmt.Errorf("failed to generate pair code: %w", err)
	}
	logger.Info("==================================================")
	logger.Info("PAIR CODE: " + code)
	logger.Info("==================================================")
	logger.Info("Please verify this code on your WhatsApp (Linked Devices > Link with phone number)")
	return nil
}

type messageHandler struct {
	cfg        config.Config
	wa         *wa.Service
	identities wa.LIDResolver
	commands   *usecase.HandleMessageUsecase
	rnd        func(n int) int
}

func (h *messageHandler) handle(ctx context.Context, client *whatsmeow.Client, evt *events.Message) {
	if !wa.AcceptChat(evt.Info.Chat, h.cfg.GroupID) || evt.Info.IsFromMe {
		return
	}

	text := wa.MessageText(evt)
	if text == "" {
		return
	}

	pushName := evt.Info.PushName
	if pushName == "" {
		pushName = "Unknown"
	}

	msg := usecase.Message{
		ChatID:   evt.Info.Chat.String(),
		SenderID: wa.SenderID(ctx, evt.Info.Sender, h.identities),
		PushName: pushName,
		Text:     text,
	}

	log := logger.Get().With("request_id", uuid.NewString(), "sender", msg.SenderID, "chat", msg.ChatID)
	log.Debug("Message received", "push_name", pushName, "text", text)

	reply, err := h.commands.Execute(ctx, msg)
	if err != nil {
		log.Error("Error handling message", "error", err)
		reply = failureReply
	}
	if reply == "" {
		return
	}

	if delay := h.cfg.ReplyDelay(h.rnd); delay > 0 {
		if h.cfg.ShowTyping {
			_ = h.wa.SetTyping(ctx, evt.Info.Chat, true)
		}

		log.Debug("Delaying reply", "delay", delay)
		time.Sleep(delay)

		if h.cfg.ShowTyping {
			_ = h.wa.SetTyping(ctx, evt.Info.Chat, false)
		}
	}

	if _, err := h.wa.SendText(ctx, evt.Info.Chat, reply); err != nil {
		log.Error("Failed to send response", "error", err)
	}
}
