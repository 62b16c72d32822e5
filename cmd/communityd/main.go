package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/communal-score/communityd/internal/auth"
	"github.com/communal-score/communityd/internal/chain"
	"github.com/communal-score/communityd/internal/config"
	"github.com/communal-score/communityd/internal/events"
	"github.com/communal-score/communityd/internal/redeem"
	"github.com/communal-score/communityd/internal/server"
	"github.com/communal-score/communityd/internal/storage"
	"github.com/communal-score/communityd/internal/storage/memory"
	"github.com/communal-score/communityd/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "communityd",
		Short:        "Community engagement reward service",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE:  runServe,
	}
	addServeFlags(serveCmd)
	root.AddCommand(serveCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE:  runMigrate,
	}
	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(migrateCmd)

	tokenInfoCmd := &cobra.Command{
		Use:   "token-info",
		Short: "Print token contract metadata",
		RunE:  runTokenInfo,
	}
	tokenInfoCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	tokenInfoCmd.Flags().String("token-address", "", "token contract address")
	root.AddCommand(tokenInfoCmd)

	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint tokens to an address (owner only)",
		RunE:  runMint,
	}
	mintCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	mintCmd.Flags().String("token-address", "", "token contract address")
	mintCmd.Flags().String("owner-key", "", "hex-encoded owner private key")
	mintCmd.Flags().String("to", "", "recipient address")
	mintCmd.Flags().Float64("amount", 0, "token amount")
	mintCmd.Flags().String("reason", "", "human-readable reason")
	mintCmd.Flags().Duration("confirm-poll", 2*time.Second, "receipt poll interval")
	mintCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(mintCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().String("store", "postgres", "record store (postgres, memory)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("rpc", "", "Ethereum RPC URL")
	cmd.Flags().String("token-address", "", "token contract address")
	cmd.Flags().String("owner-key", "", "hex-encoded owner private key")
	cmd.Flags().String("jwt-secret", "", "session token signing secret")
	cmd.Flags().Duration("confirm-poll", 2*time.Second, "receipt poll interval")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if cfg.TokenAddress == "" {
		return fmt.Errorf("token address is required")
	}
	if cfg.OwnerKey == "" {
		return fmt.Errorf("owner key is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		eventStore   storage.EventStore
		txStore      storage.TransactionStore
		walletStore  storage.WalletStore
		profileStore storage.ProfileStore
	)
	switch cfg.Store {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		eventStore = db.Events()
		txStore = db.Transactions()
		walletStore = db.Wallets()
		profileStore = db.Profiles()
	case "memory":
		eventStore = memory.NewEventStore()
		txStore = memory.NewTransactionStore()
		walletStore = memory.NewWalletStore()
		profileStore = memory.NewProfileStore()
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	submitter, err := chain.NewTokenSubmitter(ctx, chainClient, cfg.TokenAddress, cfg.OwnerKey, cfg.ConfirmPoll, logger)
	if err != nil {
		return fmt.Errorf("build submitter: %w", err)
	}

	authn, err := auth.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		return err
	}

	srv := server.New(server.Deps{
		Events:       events.NewService(eventStore, profileStore, logger),
		Coordinator:  redeem.NewCoordinator(eventStore, txStore, walletStore, submitter, logger),
		EventStore:   eventStore,
		Transactions: txStore,
		Wallets:      walletStore,
		Auth:         authn,
		Logger:       logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	logger.Info("server start",
		zap.String("listen", cfg.ListenAddr),
		zap.String("store", cfg.Store),
		zap.String("rpc", cfg.RPCURL),
		zap.String("token_address", cfg.TokenAddress),
		zap.String("owner", submitter.Owner().Hex()),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dsn, _ := cmd.Flags().GetString("pg-dsn")
	level, _ := cmd.Flags().GetString("log-level")

	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}

func runTokenInfo(cmd *cobra.Command, _ []string) error {
	rpcURL, _ := cmd.Flags().GetString("rpc")
	address, _ := cmd.Flags().GetString("token-address")
	if rpcURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	token, err := chain.NewToken(client, address)
	if err != nil {
		return err
	}
	info, err := token.Info(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("name:         %s\n", info.Name)
	fmt.Printf("symbol:       %s\n", info.Symbol)
	fmt.Printf("decimals:     %d\n", info.Decimals)
	fmt.Printf("total supply: %s\n", info.TotalSupply)
	fmt.Printf("owner:        %s\n", info.Owner.Hex())
	return nil
}

func runMint(cmd *cobra.Command, _ []string) error {
	rpcURL, _ := cmd.Flags().GetString("rpc")
	address, _ := cmd.Flags().GetString("token-address")
	ownerKey, _ := cmd.Flags().GetString("owner-key")
	to, _ := cmd.Flags().GetString("to")
	amount, _ := cmd.Flags().GetFloat64("amount")
	reason, _ := cmd.Flags().GetString("reason")
	poll, _ := cmd.Flags().GetDuration("confirm-poll")
	level, _ := cmd.Flags().GetString("log-level")

	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if rpcURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	submitter, err := chain.NewTokenSubmitter(ctx, client, address, ownerKey, poll, logger)
	if err != nil {
		return err
	}

	txHash, err := submitter.SubmitMint(ctx, to, chain.ToWei(amount), reason)
	if err != nil {
		return err
	}
	conf, err := submitter.AwaitConfirmation(ctx, txHash)
	if err != nil {
		return err
	}

	logger.Info("mint confirmed",
		zap.String("tx_hash", conf.TxHash),
		zap.Uint64("block", conf.BlockNumber),
		zap.Float64("amount", amount),
		zap.String("to", to),
	)
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
