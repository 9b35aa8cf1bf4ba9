package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rflink/internal/daemon"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the control loop until interrupted",
	Long: `Runs the control loop against the simulator until SIGINT or SIGTERM.

The sticks are held centered while the throttle ramps up to full. Every
successful cycle is recorded to the database unless db_path is empty.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := daemon.New(daemonConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := d.Start(); err != nil {
		_ = d.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	<-sigChan
	slog.Info("Received interrupt signal, shutting down...")

	return d.Stop()
}
