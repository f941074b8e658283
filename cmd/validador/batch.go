package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"validador/internal/batch"
	"validador/internal/sheet"
)

var (
	batchGrouped  bool
	batchStartRow int
	batchAnnotate bool
	batchNoShift  bool
	batchNoBreaks bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <arquivo.xlsx>",
	Short: "Valida todas as linhas de uma planilha",
	Long: `Lê a primeira aba da planilha, extrai os horários de cada linha
(layout individual por padrão, ou uma célula agrupada com --grouped),
valida cada jornada e imprime o resumo. Com --annotate o resultado é
gravado de volta: cores por linha, texto de diagnóstico e a aba
Erros_Validacao reconstruída.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchGrouped, "grouped", false,
		"horários em uma única célula de texto por linha")
	batchCmd.Flags().IntVar(&batchStartRow, "start-row", 0,
		"primeira linha de dados (1-based; 0 usa o padrão do layout)")
	batchCmd.Flags().BoolVar(&batchAnnotate, "annotate", false,
		"grava cores e diagnósticos de volta na planilha")
	batchCmd.Flags().BoolVar(&batchNoShift, "no-shift-check", false,
		"não exige jornada cadastrada (só consistência dos horários)")
	batchCmd.Flags().BoolVar(&batchNoBreaks, "no-break-check", false,
		"não valida limites de intervalo")
}

func runBatch(cmd *cobra.Command, args []string) error {
	v, _, store, err := newValidator()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	src, err := sheet.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	cfg := batch.DefaultConfig()
	cfg.Grouped = batchGrouped
	if batchGrouped {
		cfg.StartRow = 1
	}
	if batchStartRow > 0 {
		cfg.StartRow = batchStartRow
	}
	cfg.CheckShift = !batchNoShift
	cfg.CheckBreaks = !batchNoBreaks

	pipeline := batch.New(v, nil, &logger)
	report, err := pipeline.Run(cmd.Context(), src, cfg, func(p batch.Progress) {
		logger.Debug().Int("linha", p.Row).Int("total", p.Total).Msg(p.Message)
	})
	if err != nil {
		return err
	}

	fmt.Println(report.Summary())

	for _, row := range report.ErrorRows() {
		fmt.Printf("  linha %d  %-30s %s\n", row.Number, row.Pattern(), row.ErrorText())
	}

	if batchAnnotate {
		// Release the read handle before rewriting the workbook.
		if err := src.Close(); err != nil {
			return err
		}
		if err := sheet.Annotate(args[0], report, sheet.DefaultAnnotateConfig()); err != nil {
			return err
		}
		logger.Info().Str("arquivo", args[0]).Msg("planilha anotada")
	}
	return nil
}
