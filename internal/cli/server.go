package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/auth"
	"quiz-studio-service/internal/config"
	"quiz-studio-service/internal/event"
	"quiz-studio-service/internal/infra/memory"
	infmongo "quiz-studio-service/internal/infra/mongo"
	"quiz-studio-service/internal/infra/postgres"
	infraredis "quiz-studio-service/internal/infra/redis"
	transport "quiz-studio-service/internal/transport/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type stores struct {
	quizzes app.QuizRepository
	users   app.UserRepository
	close   func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Printf("using in-memory storage; data is lost on restart")
		return stores{quizzes: memory.NewQuizStore(), users: memory.NewUserStore(), close: func() {}}, nil

	case config.StoragePostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return stores{}, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return stores{}, err
		}
		db := postgres.OpenBun(cfg.Postgres.URL)
		return stores{
			quizzes: postgres.NewQuizStore(pool),
			users:   postgres.NewUserStore(db),
			close: func() {
				pool.Close()
				_ = db.Close()
			},
		}, nil

	case config.StorageMongo:
		client, db, err := infmongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return stores{}, err
		}
		if err := infmongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, err
		}
		return stores{
			quizzes: infmongo.NewQuizStore(db),
			users:   infmongo.NewUserStore(db),
			close:   func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newPublisher(cfg config.Config) event.Publisher {
	if cfg.AMQP.URL == "" {
		return event.NewLogPublisher()
	}
	p, err := event.NewRabbitPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		log.Printf("rabbitmq unavailable, logging events instead: %v", err)
		return event.NewLogPublisher()
	}
	return p
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	var revoked app.RevocationStore
	if redisClient != nil {
		quizRepo = infraredis.NewQuizCache(redisClient, st.quizzes, quizTTL)
		revoked = infraredis.NewRevocationStore(redisClient)
	} else {
		quizRepo = memory.NewCachedQuizRepository(st.quizzes, quizTTL)
		revoked = memory.NewRevocationStore()
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Printf("no jwt secret configured; sessions will not survive a restart")
	}
	tokens := auth.NewTokenManager(secret, config.TTLDuration(cfg.Auth.TokenTTL, defaultTokenTTL))

	publisher := newPublisher(cfg)
	defer publisher.Close()

	quizzes := app.NewQuizService(quizRepo, app.WithPublisher(publisher))
	users := app.NewUserService(st.users, tokens, revoked, cfg.Auth.BcryptCost)
	handler := transport.NewRouter(quizzes, users, transport.RouterConfig{
		CORSOrigins:  cfg.Server.CORSOrigins,
		SecureCookie: cfg.Auth.SecureCookie,
	})

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz studio on :%s (storage=%s)", finalPort, cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
