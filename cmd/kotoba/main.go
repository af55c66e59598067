// Command kotoba localizes game content pack language files: it extracts
// untranslated entries from mod archives, runs them through the localization
// pipeline and assembles a versioned resource pack.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kotonoha-dev/kotoba"
	"github.com/kotonoha-dev/kotoba/config"
	"github.com/kotonoha-dev/kotoba/dict"
	"github.com/kotonoha-dev/kotoba/pack"
	"github.com/kotonoha-dev/kotoba/provider"
	"github.com/kotonoha-dev/kotoba/resource"
)

const (
	untranslatedName = "untranslated.json"
	translatedName   = "translated.json"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kotoba",
		Short: kotoba.Description,
		Long: `kotoba — game language pack localization pipeline.

Rewrites every display string of a flat key → string language file through
dictionary-backed machine translation, kanji → kana simplification and
platform line-break formatting, then assembles a versioned resource pack.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultFileName, "project file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newExtractCmd(),
		newTranslateCmd(),
		newBuildCmd(),
		newAllCmd(),
		newVersionCmd(),
	)
	return root
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Collect untranslated entries from mod archives",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return runExtract(cfg, log)
		},
	}
}

func newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate [file]",
		Short: "Run the localization pipeline over the untranslated entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			in := filepath.Join(cfg.WorkDir, untranslatedName)
			if len(args) == 1 {
				in = args[0]
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runTranslate(ctx, cfg, log, in)
		},
	}
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Assemble a versioned resource pack from the translated entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return runBuild(cfg, log)
		},
	}
}

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run extract, translate and build in sequence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if err := runExtract(cfg, log); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if err := runTranslate(ctx, cfg, log, filepath.Join(cfg.WorkDir, untranslatedName)); err != nil {
				return err
			}
			return runBuild(cfg, log)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", kotoba.Name, kotoba.FullVersion())
			if kotoba.BuildDate != "unknown" {
				fmt.Fprintf(cmd.OutOrStdout(), "  built: %s\n", kotoba.BuildDate)
			}
		},
	}
}

// setup loads the project file and builds the logger.
func setup() (*config.Config, zerolog.Logger, error) {
	log := newLogger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", cfgPath).Msg("no project file, using defaults")
			return config.Default(), log, nil
		}
		return nil, log, err
	}
	return cfg, log, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func runExtract(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Str("dir", cfg.ModsDir).Msg("extracting language files")

	source, warnings, err := resource.ExtractLang(cfg.ModsDir, cfg.SourceLang)
	if err != nil {
		return err
	}
	target, _, err := resource.ExtractLang(cfg.ModsDir, cfg.TargetLang)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	// Entries already covered by the latest built pack are not untranslated.
	if latest, ok, lerr := pack.LatestVersion(cfg.OutputDir, cfg.PackName); lerr == nil && ok {
		prev := filepath.Join(cfg.OutputDir, pack.ArtifactName(cfg.PackName, latest),
			"assets", "minecraft", "lang", cfg.TargetLang+".json")
		if prevFile, perr := resource.LoadFile(prev); perr == nil {
			for _, key := range prevFile.Keys() {
				if v, _ := prevFile.Get(key); v != "" {
					target.Set(key, v)
				}
			}
		}
	}

	untranslated := resource.Untranslated(source, target)
	stats := resource.Stats(source, target)
	log.Info().
		Int("source", stats.Source).
		Int("translated", stats.Translated).
		Int("untranslated", stats.Untranslated).
		Msg("extraction complete")

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cfg.WorkDir, err)
	}
	return untranslated.SaveFile(filepath.Join(cfg.WorkDir, untranslatedName))
}

func runTranslate(ctx context.Context, cfg *config.Config, log zerolog.Logger, inPath string) error {
	file, err := resource.LoadFile(inPath)
	if err != nil {
		return err
	}
	if file.Len() == 0 {
		log.Info().Msg("nothing to translate")
		return nil
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	p := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:  os.Getenv(cfg.Provider.APIKeyEnv),
		Model:   cfg.Provider.Model,
		BaseURL: cfg.Provider.BaseURL,
	})

	opts := []kotoba.Option{
		kotoba.WithSourceLang(cfg.SourceLang),
		kotoba.WithInterval(time.Duration(cfg.IntervalSec) * time.Second),
		kotoba.WithRetryPolicy(kotoba.RetryPolicy{MaxAttempts: cfg.MaxAttempts}),
		kotoba.WithDelimiter(cfg.Delimiter),
		kotoba.WithContext(cfg.Context),
		kotoba.WithLogger(log),
	}
	if strings.HasPrefix(strings.ToLower(cfg.TargetLang), "ja") {
		simplifier, serr := kotoba.NewSimplifier()
		if serr != nil {
			return fmt.Errorf("building simplifier: %w", serr)
		}
		opts = append(opts, kotoba.WithSimplifier(simplifier))
	}

	pipe := kotoba.New(cfg.TargetLang, store, p, opts...)

	log.Info().Int("entries", file.Len()).Str("target", cfg.TargetLang).Msg("translating")
	report, err := pipe.Run(ctx, file)
	if report != nil {
		logReport(log, report)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cfg.WorkDir, err)
	}
	return file.SaveFile(filepath.Join(cfg.WorkDir, translatedName))
}

func runBuild(cfg *config.Config, log zerolog.Logger) error {
	file, err := resource.LoadFile(filepath.Join(cfg.WorkDir, translatedName))
	if err != nil {
		return err
	}

	builder := &pack.Builder{
		Root:        cfg.OutputDir,
		Base:        cfg.PackName,
		Lang:        cfg.TargetLang,
		Format:      cfg.PackFormat,
		Description: cfg.Description,
	}
	result, err := builder.Build(file)
	if err != nil {
		return err
	}

	log.Info().
		Str("dir", result.Dir).
		Stringer("version", result.Version).
		Int("carried", result.Merged).
		Int("fresh", result.Fresh).
		Msg("pack built")
	return nil
}

// newStore builds the terminology store from the dictionary setting:
// a redis:// URL selects the shared Redis store, anything else is a file path.
func newStore(cfg *config.Config) (dict.Store, func(), error) {
	if strings.HasPrefix(cfg.Dictionary, "redis://") || strings.HasPrefix(cfg.Dictionary, "rediss://") {
		rs, err := dict.NewRedisStore(dict.RedisConfig{URL: cfg.Dictionary})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting dictionary store: %w", err)
		}
		return rs, func() { rs.Close() }, nil
	}

	fs, err := dict.NewFileStore(cfg.Dictionary)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}

func logReport(log zerolog.Logger, report *kotoba.Report) {
	ev := log.Info().
		Int("entries", report.Entries).
		Int("translated", report.Translated).
		Int("from_dictionary", report.FromDictionary).
		Int("failed", len(report.Failures)).
		Int("conflicts", len(report.Conflicts))
	ev.Msg("run complete")

	for _, f := range report.Failures {
		log.Warn().Str("key", f.Key).Stringer("stage", f.Stage).Err(f.Err).Msg("entry not localized")
	}
	for _, c := range report.Conflicts {
		log.Warn().Str("term", c.Term).Str("kept", c.Canonical).Str("rejected", c.Rejected).Msg("terminology conflict")
	}
}
