package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rigel/internal/catalog"
	"github.com/kailas-cloud/rigel/internal/config"
	logpkg "github.com/kailas-cloud/rigel/internal/logger"
	queryuc "github.com/kailas-cloud/rigel/internal/usecase/query"
)

var (
	envName    string
	configPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "rigelq",
	Short: "Query a document index through typed rigel schemas",
	Long: `rigelq loads the schemas and index settings of a rigel config file and
runs identifier lookups, listings, grouped listings and joins against the index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "Config environment (reads config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Explicit config file, overrides --env")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// session is an opened query service plus its cleanup.
type session struct {
	svc    *queryuc.Service
	logger *zap.Logger
	close  func()
}

func openSession() (*session, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(envName)
	}
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger("local", logpkg.Options{Level: level, Name: "rigelq"})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.New(cfg.Schemas)
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}
	client, err := catalog.NewClient(cfg.Index, logger, nil)
	if err != nil {
		return nil, err
	}

	return &session{
		svc:    queryuc.New(client, cat),
		logger: logger,
		close: func() {
			client.Close()
			_ = logger.Sync()
		},
	}, nil
}

// withSession opens a session, attaches its logger to the command context and
// runs fn.
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	cmd.SetContext(logpkg.ContextWithLogger(cmd.Context(), s.logger))
	return fn(s)
}
