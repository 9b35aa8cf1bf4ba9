package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rflink/internal/models"
	"rflink/internal/realflight"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Inject the controller and run one exchange",
	Long: `Connects to the simulator, injects the controller interface, sends one
neutral control cycle and prints the main telemetry values.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pool := realflight.NewPool(poolConfig(cfg))
	defer pool.Close()

	session := realflight.NewSession(pool, sessionConfig(cfg))
	if err := session.Update(context.Background(), models.NeutralInput()); err != nil {
		return fmt.Errorf("probe of %s failed: %w", cfg.ServerAddr, err)
	}

	t := session.Telemetry()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connected to %s\n", cfg.ServerAddr)
	fmt.Fprintf(out, "  Airspeed:        %.2f m/s\n", t.AirspeedMPS)
	fmt.Fprintf(out, "  Altitude ASL:    %.2f m\n", t.AltitudeASLMTR)
	fmt.Fprintf(out, "  Altitude AGL:    %.2f m\n", t.AltitudeAGLMTR)
	fmt.Fprintf(out, "  Roll:            %.2f deg\n", t.RollDEG)
	fmt.Fprintf(out, "  Pitch:           %.2f deg\n", t.InclinationDEG)
	fmt.Fprintf(out, "  Yaw:             %.2f deg\n", t.AzimuthDEG)
	fmt.Fprintf(out, "  Position:        %.2f, %.2f m\n", t.AircraftPositionXMTR, t.AircraftPositionYMTR)
	fmt.Fprintf(out, "  Touching ground: %s\n", yesNo(t.TouchingGround()))
	fmt.Fprintf(out, "  Engine running:  %s\n", yesNo(t.EngineRunning()))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
