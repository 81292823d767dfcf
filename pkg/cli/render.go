package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interceptd/interceptd/pkg/config"
	"github.com/interceptd/interceptd/pkg/handler"
	"github.com/interceptd/interceptd/pkg/harness"
)

var (
	renderFiles   []string
	renderMethod  string
	renderData    string
	renderHeaders []string
)

var renderCmd = &cobra.Command{
	Use:   "render <path>",
	Short: "Render the response a request would receive",
	Long: `Render loads handler files, dispatches a synthetic request against them and
prints the matched response. Useful for debugging handler files without
writing a test.

Example:

  interceptd render -f handlers.yaml -X POST -d '{"name":"jane"}' /api/users`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(renderFiles) == 0 {
			return fmt.Errorf("at least one handler file is required (-f)")
		}

		var handlers []*handler.Handler
		for _, f := range renderFiles {
			hs, err := config.LoadGlob(f)
			if err != nil {
				return err
			}
			handlers = append(handlers, hs...)
		}

		h := harness.New()
		h.SetBase(handlers...)

		req, err := handler.NewRequest(renderMethod, args[0], []byte(renderData))
		if err != nil {
			return fmt.Errorf("invalid request target: %w", err)
		}
		for _, hdr := range renderHeaders {
			name, value, ok := strings.Cut(hdr, ":")
			if !ok {
				return fmt.Errorf("invalid header %q, want name:value", hdr)
			}
			req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
		}

		resp, err := h.Dispatch(req)
		var unhandled *harness.UnhandledRequestError
		if errors.As(err, &unhandled) {
			return fmt.Errorf("%s (checked %d handler(s))", unhandled.Error(), len(handlers))
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d\n", resp.Status())
		resp.Header.Each(func(name, value string) {
			fmt.Fprintf(out, "%s: %s\n", name, value)
		})
		if len(resp.Body) > 0 {
			fmt.Fprintf(out, "\n%s\n", resp.Body)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringSliceVarP(&renderFiles, "file", "f", nil, "Handler file or glob (repeatable)")
	renderCmd.Flags().StringVarP(&renderMethod, "request", "X", "GET", "HTTP method for the synthetic request")
	renderCmd.Flags().StringVarP(&renderData, "data", "d", "", "Request body")
	renderCmd.Flags().StringArrayVarP(&renderHeaders, "header", "H", nil, "Request header as name:value (repeatable)")
	rootCmd.AddCommand(renderCmd)
}
