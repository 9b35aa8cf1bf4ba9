package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rflink/internal/models"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the telemetry tags decoded from every reply",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, entry := range models.KeyTable {
			fmt.Fprintln(cmd.OutOrStdout(), entry.Tag)
		}
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
