package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/challenge"
	"github.com/park285/cheese-duel/internal/command"
	appcfg "github.com/park285/cheese-duel/internal/config"
	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/gateway"
	"github.com/park285/cheese-duel/internal/lobby"
	"github.com/park285/cheese-duel/internal/msgcat"
	"github.com/park285/cheese-duel/internal/obslog"
	"github.com/park285/cheese-duel/internal/presenter"
)

const handleTimeout = 15 * time.Second

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	headers := gateway.StaticHeaders(cfg.XUserID, cfg.XUserEmail, cfg.XSessionID)
	client := gateway.NewClient(cfg.GatewayBaseURL, gateway.WithHeaderProvider(headers))
	ws := gateway.NewWebSocket(cfg.GatewayWSURL, 5)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state gateway.WebSocketState) {
		logger.Info("ws_state", zap.Stringer("state", state))
	})
	egress := gateway.NewEgress(cfg.EgressMode, client, ws)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis url error", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("redis ping error", zap.Error(err))
	}
	duels := duel.NewManagerWithClient(rdb, cfg.GameTTL)

	var history command.HistoryStore
	var repo *duel.Repository
	if cfg.DatabaseURL != "" {
		repo, err = duel.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("duel repository init error", zap.Error(err))
		}
		if err := repo.EnsureSchema(context.Background()); err != nil {
			logger.Fatal("duel schema error", zap.Error(err))
		}
		duels.AttachRepository(repo)
		history = repo
	} else {
		logger.Info("duel_results_disabled", zap.String("reason", "DATABASE_URL not set"))
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("message catalog error", zap.Error(err))
	}

	pres := presenter.New(
		func(room, message string) error { return egress.SendText(context.Background(), room, message) },
		func(room, imageBase64 string) error { return egress.SendImage(context.Background(), room, imageBase64) },
	)
	handler := command.New(command.Deps{
		Prefix:      cfg.BotPrefix,
		Duels:       duels,
		Lobbies:     lobby.NewManager(rdb, duels),
		Challenges:  challenge.NewManager(challenge.WithAutoAccept()),
		History:     history,
		Presenter:   pres,
		Formatter:   presenter.NewFormatter(cat, cfg.BotPrefix),
		RoomAllowed: cfg.RoomAllowed,
	})

	rootCtx, stop := context.WithCancel(context.Background())
	var inflight sync.WaitGroup
	ws.OnMessage(func(msg *gateway.Message) {
		if msg == nil || !strings.HasPrefix(strings.TrimSpace(msg.Msg), cfg.BotPrefix) {
			return
		}
		in := command.Message{Room: msg.Room, UserID: msg.UserID(), UserName: msg.SenderName(), Text: msg.Msg}
		inflight.Add(1)
		// keep the read loop free
		go func() {
			defer inflight.Done()
			ctx, cancel := context.WithTimeout(rootCtx, handleTimeout)
			defer cancel()
			if err := handler.Handle(ctx, in); err != nil {
				logger.Warn("reply_failed", zap.String("room", in.Room), zap.Error(err))
			}
		}()
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		logger.Fatal("ws connect error", zap.Error(err))
	}
	cancel()
	logger.Info("duel_bot_started", zap.String("prefix", cfg.BotPrefix), zap.Strings("allowed_rooms", cfg.AllowedRooms))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("duel_bot_stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = ws.Close(shutdownCtx)
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("shutdown_timeout")
	}
	stop()
	_ = duels.Close()
	if repo != nil {
		_ = repo.Close()
	}
}
