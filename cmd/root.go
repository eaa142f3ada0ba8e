package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"cancerscope/config"
	"cancerscope/locale"
)

var rootCmd = &cobra.Command{
	Use:   "cancerscope",
	Short: "Breast cancer diagnosis inference service",
	Long: "cancerscope classifies a tumour sample described by 30 measurements as " +
		"Benign or Malignant with one of three pre-fitted models.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("lang", "", "Override ui.language (en, id)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config and applies the flag overrides. A missing file is
// only tolerated when --config was left at its default.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, path, fmt.Errorf("load config: %w", err)
		}
		cfg = config.Default()
		path = ""
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
		cfg.UI.Language = lang
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func uiLanguage(cfg *config.Config) language.Tag {
	tag, _ := locale.Parse(cfg.UI.Language)
	return tag
}
