package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/solpay-io/solpay/internal/auth"
	"github.com/solpay-io/solpay/internal/config"
	"github.com/solpay-io/solpay/internal/http_api"
	"github.com/solpay-io/solpay/internal/ledger"
	"github.com/solpay-io/solpay/internal/notificator"
	"github.com/solpay-io/solpay/internal/payment"
	"github.com/solpay-io/solpay/internal/repository"
	"github.com/solpay-io/solpay/internal/verification"
	"github.com/solpay-io/solpay/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "solpay",
		Usage: "Solpay is a Solana payment verification service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "solana-rpc-url", Aliases: []string{"r"}, Usage: "Solana RPC endpoint"},
			&cli.StringFlag{Name: "solana-network", Aliases: []string{"n"}, Usage: "Solana network tag (devnet, mainnet)"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API listening port"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("solana-rpc-url") {
		cfg.SolanaRPCURL = c.String("solana-rpc-url")
	}
	if c.IsSet("solana-network") {
		cfg.SolanaNetwork = c.String("solana-network")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize ledger client
	ledgerClient := ledger.NewSolanaClient(cfg.SolanaRPCURL, log)

	// Initialize notificator (both channels optional)
	var telNotif *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" {
		telNotif, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, db)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	var emailNotif *notificator.EmailNotificator
	if cfg.SMTPHost != "" {
		emailNotif = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	}
	notif := notificator.NewNotificator(log, telNotif, emailNotif)

	// Initialize session components
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	var revocation auth.RevocationStore
	if cfg.RedisAddr != "" {
		revocation, err = auth.NewRedisRevocationStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("failed to initialize revocation store: %v", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set, token revocations will not survive a restart")
		revocation = auth.NewMemoryRevocationStore()
	}

	// Create the verification workflow
	policy := verification.RetryPolicy{
		MaxAttempts: cfg.PollMaxAttempts,
		Interval:    cfg.PollInterval,
	}
	verifier := verification.NewWorkflow(db, ledgerClient, notif, log, policy)

	uriBuilder := payment.NewURIBuilder(cfg.SolanaNetwork)

	apiServer := http_api.NewHTTPServer(uriBuilder, verifier, db, tokens, revocation, cfg.APIPort, log)

	go apiServer.Start()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return apiServer.Shutdown()
}
