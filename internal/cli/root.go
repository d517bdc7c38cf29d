package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/youruser/galentine/internal/config"
)

// NewRootCmd wires the serve and render subcommands. Configuration is read
// once, before any subcommand runs.
func NewRootCmd() *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "galentine",
		Short: "Galentine proposal pages with a photo collage maker",
		Long: `Galentine serves the proposal flow over HTTP and renders photo
collages (grid, stacked or polaroid) to PNG.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c
			slog.SetDefault(cfg.Logger(os.Stderr))
			return nil
		},
	}

	cmd.AddCommand(newServeCmd(&cfg), newRenderCmd(&cfg))
	return cmd
}
