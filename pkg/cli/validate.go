package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interceptd/interceptd/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|glob>...",
	Short: "Validate handler files",
	Long: `Validate parses each handler file (or glob, ** supported) and reports the
handlers it declares. A file that fails to parse or declares an invalid
pattern makes the command exit non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			handlers, err := config.LoadGlob(arg)
			if err != nil {
				// Fall back to a literal path for args without glob meta.
				handlers, err = config.Load(arg)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d handler(s)\n", arg, len(handlers))
			for _, h := range handlers {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", h.Method, h.Path)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
