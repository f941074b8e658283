package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"validador/internal/codes"
	"validador/internal/config"
	"validador/internal/history"
	"validador/internal/metrics"
	"validador/internal/validator"
)

var (
	flagConfig  string
	flagCodesDB string
	flagHistory string
	flagVerbose bool
)

var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "validador",
	Short: "Valida jornadas de trabalho contra o quadro de horários",
	Long: `validador confere entradas de horário (2 ou 4 horários por jornada)
contra o catálogo de jornadas configurado: duração exata, intervalo,
períodos contínuos, interjornada e complemento de sábado. Também
processa planilhas inteiras e anota o resultado de volta no arquivo.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		logger = logger.Level(level)
		metrics.Register()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger = zerolog.New(output).With().Timestamp().Logger()

	base := dataDir()
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config",
		envOr("VALIDADOR_CONFIG", "configs/config.yaml"), "arquivo YAML de regras")
	rootCmd.PersistentFlags().StringVar(&flagCodesDB, "codes-db",
		envOr("VALIDADOR_CODES_DB", filepath.Join(base, "codigos.db")), "banco de códigos de jornada")
	rootCmd.PersistentFlags().StringVar(&flagHistory, "history-file",
		envOr("VALIDADOR_HISTORY", filepath.Join(base, "historico.json")), "arquivo de histórico")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log detalhado")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(restCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(codesCmd)
	rootCmd.AddCommand(historyCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// dataDir is where the code store and history live by default.
func dataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "validador")
}

func loadRules() (*config.RuleConfig, error) {
	return config.NewStore(flagConfig).Get()
}

// openCodes opens the code store. A store that cannot be opened is not
// fatal for validation: codes just stop resolving.
func openCodes() *codes.Store {
	store, err := codes.Open(flagCodesDB, &logger)
	if err != nil {
		logger.Warn().Err(err).Str("path", flagCodesDB).Msg("code store unavailable")
		return nil
	}
	return store
}

// newValidator wires the rule config and code store together. The
// returned store may be nil; when set the caller owns closing it.
func newValidator() (*validator.Validator, *config.RuleConfig, *codes.Store, error) {
	rules, err := loadRules()
	if err != nil {
		return nil, nil, nil, err
	}

	store := openCodes()
	if store == nil {
		return validator.New(rules, nil), rules, nil, nil
	}
	return validator.New(rules, store), rules, store, nil
}

func openHistory(rules *config.RuleConfig) *history.Log {
	ttl := time.Duration(rules.HistoryCacheMinutes) * time.Minute
	return history.New(flagHistory, ttl, &logger)
}
