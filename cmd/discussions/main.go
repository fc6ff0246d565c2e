package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/discussion-service/internal/cache"
	"github.com/example/discussion-service/internal/events"
	"github.com/example/discussion-service/internal/handlers"
	"github.com/example/discussion-service/internal/platform/auth"
	"github.com/example/discussion-service/internal/platform/config"
	"github.com/example/discussion-service/internal/platform/db"
	"github.com/example/discussion-service/internal/platform/httpserver"
	"github.com/example/discussion-service/internal/platform/logging"
	"github.com/example/discussion-service/internal/platform/natsconn"
	"github.com/example/discussion-service/internal/platform/run"
	"github.com/example/discussion-service/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	comments, closeStore := initComments(log)
	if closeStore != nil {
		defer closeStore()
	}

	tcache := initCache(log)
	pub, closeNATS := initPublisher(log)
	if closeNATS != nil {
		defer closeNATS()
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	verifier := auth.JWTVerifier{Secret: []byte(jwtSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)

	// Public read
	r.Get("/v1/threads/{thread_id}/comments", handlers.GetThread(comments, tcache))

	// Auth required for any mutation
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/threads/{thread_id}/comments", handlers.PostComment(comments, pub, tcache, cfg.Discussion.MaxReplyDepth))
		r.Post("/v1/votes", handlers.CastVote(comments, pub, tcache))

		// Moderation console
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireModerator)
			r.Get("/v1/threads", handlers.ListThreads(comments))
			r.Delete("/v1/comments/{comment_id}", handlers.DeleteComment(comments, pub, tcache))
			r.Patch("/v1/comments/{comment_id}", handlers.ToggleSpoiler(comments, pub, tcache))
		})
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initComments selects the CommentStore backend.
// In production (APP_ENV=production) it requires a working Postgres
// connection and terminates the process otherwise.
func initComments(log *zap.Logger) (store.CommentStore, func()) {
	isProd := strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production")

	pool, err := db.Open(context.Background())
	if err != nil {
		if isProd {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			os.Exit(1)
		}
		log.Warn("postgres unavailable, using in-memory comment store (development only)", zap.Error(err))
		return store.NewInMemoryCommentStore(), nil
	}

	log.Info("comment store: postgres")
	return store.NewPostgresCommentStore(pool), pool.Close
}

// initCache builds the optional Redis listing cache; nil disables caching.
func initCache(log *zap.Logger) *cache.ThreadCache {
	url := strings.TrimSpace(os.Getenv("REDIS_URL"))
	if url == "" {
		log.Warn("REDIS_URL not set, thread listing cache disabled")
		return nil
	}
	tc, err := cache.New(url, 30*time.Second)
	if err != nil {
		log.Warn("redis unavailable, thread listing cache disabled", zap.Error(err))
		return nil
	}
	log.Info("thread listing cache: redis")
	return tc
}

// initPublisher builds the optional NATS event publisher; nil is a no-op.
func initPublisher(log *zap.Logger) (*events.Publisher, func()) {
	nc, err := natsconn.Connect(natsconn.Options{})
	if err != nil {
		log.Warn("nats unavailable, event publishing disabled", zap.Error(err))
		return nil, nil
	}
	js, err := nc.JetStream()
	if err != nil {
		log.Warn("jetstream unavailable, event publishing disabled", zap.Error(err))
		nc.Close()
		return nil, nil
	}
	log.Info("event publisher: nats")
	return events.New(js, log), nc.Close
}
