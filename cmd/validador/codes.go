package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"validador/internal/codes"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Gerencia o catálogo de códigos de jornada",
}

var codesSkipHeader bool

var codesImportCmd = &cobra.Command{
	Use:   "import <arquivo>",
	Short: "Importa códigos de um arquivo xlsx, csv ou json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := mustOpenCodes()
		if err != nil {
			return err
		}
		defer store.Close()

		skip := codesSkipHeader
		if !cmd.Flags().Changed("skip-header") {
			if rules, err := loadRules(); err == nil {
				skip = rules.SkipImportHeader
			}
		}

		n, err := store.ImportFile(args[0], skip)
		if err != nil {
			return err
		}
		fmt.Printf("%d códigos importados\n", n)
		return nil
	},
}

var codesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista os códigos cadastrados",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := mustOpenCodes()
		if err != nil {
			return err
		}
		defer store.Close()

		all, err := store.All()
		if err != nil {
			return err
		}
		patterns := make([]string, 0, len(all))
		for pattern := range all {
			patterns = append(patterns, pattern)
		}
		sort.Strings(patterns)
		for _, pattern := range patterns {
			fmt.Printf("%-40s %s\n", pattern, all[pattern])
		}
		fmt.Printf("%d códigos\n", len(patterns))
		return nil
	},
}

var codesSetCmd = &cobra.Command{
	Use:   "set <horários> <código>",
	Short: "Cadastra ou atualiza o código de uma jornada",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := mustOpenCodes()
		if err != nil {
			return err
		}
		defer store.Close()

		code := args[len(args)-1]
		pattern := strings.Join(args[:len(args)-1], " ")
		if err := store.Save(pattern, code); err != nil {
			return err
		}
		fmt.Printf("%s → %s\n", pattern, code)
		return nil
	},
}

var codesRemoveCmd = &cobra.Command{
	Use:   "remove <horários>",
	Short: "Remove o código de uma jornada",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := mustOpenCodes()
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Remove(strings.Join(args, " "))
	},
}

func init() {
	codesImportCmd.Flags().BoolVar(&codesSkipHeader, "skip-header", false,
		"ignora a primeira linha do arquivo importado")
	codesCmd.AddCommand(codesImportCmd)
	codesCmd.AddCommand(codesListCmd)
	codesCmd.AddCommand(codesSetCmd)
	codesCmd.AddCommand(codesRemoveCmd)
}

// mustOpenCodes opens the code store or fails, unlike the validation
// path where a missing store only degrades code lookup.
func mustOpenCodes() (*codes.Store, error) {
	return codes.Open(flagCodesDB, &logger)
}
