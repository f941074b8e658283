package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCount int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Mostra as validações recentes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRules()
		if err != nil {
			return err
		}

		log := openHistory(rules)
		entries := log.Recent(historyCount)
		if historyCount <= 0 {
			entries = log.All()
		}

		if len(entries) == 0 {
			fmt.Println("Histórico vazio")
			return nil
		}
		for _, entry := range entries {
			fmt.Println(entry)
			fmt.Println()
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Apaga todo o histórico",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRules()
		if err != nil {
			return err
		}
		if err := openHistory(rules).Clear(); err != nil {
			return err
		}
		fmt.Println("Histórico apagado")
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 10, "quantidade de entradas (0 = todas)")
	historyCmd.AddCommand(historyClearCmd)
}
