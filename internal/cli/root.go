// Package cli implements the family-tree CLI commands.
package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/family-tree/internal/collection"
	"github.com/rcliao/family-tree/internal/config"
	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/logger"
)

var (
	configFile string
	cfg        *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "family-tree",
	Short: "Ingest GEDCOM family trees and export their person graph",
	Long: "Loads GEDCOM record files into per-tree SQLite databases and exports the connected " +
		"parent/partner graph as JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogFile); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger.Get().Debug("config loaded", zap.String("data_dir", cfg.DataDir))
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./family-tree.yaml or <config dir>/family-tree/config.yaml)")
	RootCmd.PersistentFlags().String("data-dir", "", "Directory holding tree databases (default: $FAMILY_TREE_DATA_DIR or ~/.family-tree/trees)")
	RootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default: info)")
}

func openCollections() *collection.Collections {
	return collection.New(cfg.DataDir)
}

func printJSON(cmd *cobra.Command, v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %s: %v\n", msg, describe(err), err)
	logger.Sync()
	os.Exit(1)
}

func describe(err error) string {
	var missing *apperrors.IndividualNotFound
	switch {
	case stderrors.As(err, &missing):
		return "no such individual"
	case apperrors.IsErrorType(err, apperrors.ErrorTypeDecoding):
		return "input is not valid UTF-8 text, nothing was written"
	case apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
		return "no such tree"
	case apperrors.IsErrorType(err, apperrors.ErrorTypeStorage):
		return "storage failure, changes rolled back"
	case apperrors.IsErrorType(err, apperrors.ErrorTypeConfig):
		return "invalid configuration"
	default:
		return "failed"
	}
}
