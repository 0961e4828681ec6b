package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Blauerdrache/fnserve/dev"
	"github.com/Blauerdrache/fnserve/http"
)

var (
	devAddress  string
	devDebounce time.Duration
)

var devCmd = &cobra.Command{
	Use:   "dev [directory]",
	Short: "Run in development mode with hot reload",
	Long: `Dev serves a directory of handler files over HTTP and watches it
for changes. Edits, new files and deletions are picked up without a
restart. Debug responses are enabled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []dev.Option{dev.WithDebugMode(true)}

		if configFile != "" {
			opts = append(opts, dev.WithConfigFile(configFile))
		}
		if len(args) > 0 {
			opts = append(opts, dev.WithDir(args[0]))
		}
		if devAddress != "" {
			opts = append(opts, dev.WithServeOptions(http.WithAddress(devAddress)))
		}
		if devDebounce > 0 {
			opts = append(opts, dev.WithDebounce(devDebounce))
		}

		return dev.Serve(opts...)
	},
}

func init() {
	devCmd.Flags().StringVar(&devAddress, "address", "", "listen address (default \":8080\")")
	devCmd.Flags().DurationVar(&devDebounce, "debounce", 0, "reload debounce window (default 300ms)")
	rootCmd.AddCommand(devCmd)
}
