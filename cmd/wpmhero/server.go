package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wpmhero/internal/applog"
	"github.com/verte-zerg/wpmhero/internal/config"
	"github.com/verte-zerg/wpmhero/internal/identity"
	"github.com/verte-zerg/wpmhero/internal/jobs"
	"github.com/verte-zerg/wpmhero/internal/leaderboard"
	"github.com/verte-zerg/wpmhero/internal/model"
	"github.com/verte-zerg/wpmhero/internal/results"
	"github.com/verte-zerg/wpmhero/internal/server"
	"github.com/verte-zerg/wpmhero/internal/store"
)

var (
	envFile string

	userName string
	userDB   string
	userSave bool
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage leaderboard accounts",
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and print its API token",
		Args:  cobra.NoArgs,
		RunE:  runUserCreateCmd,
	}
	createCmd.Flags().StringVar(&userName, "name", "", "display name")
	createCmd.Flags().StringVar(&userDB, "db", "", "database path (default: WPMHERO_DB or the local database)")
	createCmd.Flags().BoolVar(&userSave, "save", false, "store the profile and token in the config file")
	createCmd.Flags().StringVar(&envFile, "env-file", ".env", "environment file to load if present")
	_ = createCmd.MarkFlagRequired("name")
	userCmd.AddCommand(createCmd)
	return userCmd
}

func runUserCreateCmd(cmd *cobra.Command, _ []string) error {
	path := userDB
	if path == "" {
		serverCfg, err := config.LoadServerEnv(envFile)
		if err != nil {
			return err
		}
		path = serverCfg.DBPath
	}
	st, closeStore, err := openStore(path)
	if err != nil {
		return err
	}
	defer closeStore()

	user, token, err := identity.CreateUser(cmd.Context(), st, userName)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "user id: %s\nname:    %s\ntoken:   %s\n", user.ID, user.Name, token); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !userSave {
		return nil
	}
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	fileCfg.Profile = config.ProfileConfig{Name: user.Name, UserID: user.ID}
	fileCfg.Sync.Token = token
	if err := config.SaveConfig(config.DefaultConfigPath(), fileCfg); err != nil {
		return err
	}
	logErrf("Saved profile to %s\n", config.DefaultConfigPath())
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the results and leaderboard HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "environment file to load if present")
	return cmd
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	serverCfg, err := config.LoadServerEnv(envFile)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(serverCfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	board, closeBoard, err := serverBoard(serverCfg, st)
	if err != nil {
		return err
	}
	defer closeBoard()

	var publisher results.Publisher = results.NewRecorder(st, board)
	if serverCfg.UseQueue() {
		opt, err := asynq.ParseRedisURI(serverCfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		enqueuer := jobs.NewEnqueuer(opt, serverCfg.Queue)
		defer func() {
			if cerr := enqueuer.Close(); cerr != nil {
				applog.Error("Close job queue client: %v", cerr)
			}
		}()
		publisher = enqueuer
		applog.Startup("Recording results through queue %q", serverCfg.Queue)
	}

	auth := server.AuthFunc(func(ctx context.Context, token string) (model.Identity, error) {
		return identity.Authenticate(ctx, st, token)
	})
	applog.Startup("Using database %s", serverCfg.DBPath)
	return server.New(publisher, board, auth).ListenAndServe(ctx, serverCfg.Addr)
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Process queued results and trim leaderboards",
		Args:  cobra.NoArgs,
		RunE:  runWorkerCmd,
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "environment file to load if present")
	return cmd
}

func runWorkerCmd(_ *cobra.Command, _ []string) error {
	serverCfg, err := config.LoadServerEnv(envFile)
	if err != nil {
		return err
	}
	if serverCfg.RedisURL == "" {
		return fmt.Errorf("REDIS_URL must be set for the worker")
	}
	opt, err := asynq.ParseRedisURI(serverCfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(serverCfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	board, closeBoard, err := serverBoard(serverCfg, st)
	if err != nil {
		return err
	}
	defer closeBoard()

	worker, err := jobs.NewWorker(opt, serverCfg.Queue, results.NewRecorder(st, board), board)
	if err != nil {
		return err
	}
	return worker.Run(ctx)
}

// serverBoard picks the Redis leaderboard when REDIS_URL is set and the
// database-backed one otherwise.
func serverBoard(cfg config.ServerConfig, st *store.Store) (leaderboard.Board, func(), error) {
	if cfg.RedisURL == "" {
		applog.Startup("REDIS_URL not set; ranking results from the database")
		return leaderboard.NewStoreBoard(st), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	closeFn := func() {
		if cerr := client.Close(); cerr != nil {
			applog.Error("Close redis client: %v", cerr)
		}
	}
	applog.Startup("Leaderboards stored in Redis at %s", opts.Addr)
	return leaderboard.NewRedisBoard(client, st), closeFn, nil
}
