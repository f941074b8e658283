package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <horários>",
	Short: "Valida uma jornada (2 ou 4 horários)",
	Example: `  validador validate 08:00 12:00
  validador validate 08:00 12:00 13:00 17:00`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	v, rules, store, err := newValidator()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	input := strings.Join(args, " ")
	verdict := v.Validate(input)
	fmt.Println(verdict.Message)

	if verdict.Valid {
		if verdict.DayType != "" {
			fmt.Printf("Dias: %s\n", verdict.DayType)
		}
		if verdict.WeeklyHours > 0 {
			fmt.Printf("Semanal: %dh | Mensal: %dh\n", verdict.WeeklyHours, verdict.MonthlyHours)
		}
	}

	if err := openHistory(rules).Append(verdict, input, false); err != nil {
		logger.Warn().Err(err).Msg("history append failed")
	}
	return nil
}

var restSaturday bool

var restCmd = &cobra.Command{
	Use:   "rest <jornada> <jornada-seguinte>",
	Short: "Valida duas jornadas e a interjornada entre elas",
	Long: `Valida duas jornadas consecutivas e o descanso entre o fim da
primeira e o início da segunda, atravessando a meia-noite quando
necessário. Com --saturday a segunda jornada é tratada como o
complemento de sábado de uma jornada principal de 8h.`,
	Example: `  validador rest "22:00 02:00" "13:00 17:00"
  validador rest --saturday "08:00 12:00 13:00 17:00" "08:00 12:00"`,
	Args: cobra.ExactArgs(2),
	RunE: runRest,
}

func init() {
	restCmd.Flags().BoolVar(&restSaturday, "saturday", false,
		"segunda jornada é o complemento de sábado")
}

func runRest(cmd *cobra.Command, args []string) error {
	v, rules, store, err := newValidator()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	first, second, rest := v.ValidateWithRest(args[0], args[1], restSaturday)

	fmt.Println(first.Message)
	fmt.Println(second.Message)
	if rest != "" {
		fmt.Println(rest)
	}

	log := openHistory(rules)
	if restSaturday {
		if err := log.AppendMain(first, args[0]); err != nil {
			logger.Warn().Err(err).Msg("history append failed")
		}
		if err := log.AppendLinked(second, args[1]); err != nil {
			logger.Warn().Err(err).Msg("history append failed")
		}
	} else {
		if err := log.Append(first, args[0], false); err != nil {
			logger.Warn().Err(err).Msg("history append failed")
		}
		if err := log.Append(second, args[1], false); err != nil {
			logger.Warn().Err(err).Msg("history append failed")
		}
	}
	return nil
}
