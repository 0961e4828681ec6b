package main

import (
	"github.com/spf13/cobra"

	"github.com/Blauerdrache/fnserve/server"
)

var (
	serveDir  string
	serveType string
)

var serveCmd = &cobra.Command{
	Use:   "serve [directory]",
	Short: "Serve a directory of functions",
	Long: `Serve starts a front door over a directory of handler files.
The default front door is a local HTTP server; "sqs" and "lambda" run
the corresponding Lambda-hosted engines. A YAML config file (--config,
or fnserve.yaml in the working directory) configures everything else.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []server.Option

		configured := false
		if configFile != "" {
			opts = append(opts, server.WithServeConfigFile(configFile))
			configured = true
		} else if p, err := server.FindDefaultServeConfigFile(); err == nil {
			opts = append(opts, server.WithServeConfigFile(p))
			configured = true
		}

		if len(args) > 0 {
			serveDir = args[0]
		}
		if serveDir == "" && !configured {
			serveDir = "functions"
		}
		if serveDir != "" {
			opts = append(opts, server.WithFunctionsDir(serveDir))
		}
		if serveType != "" {
			opts = append(opts, server.WithServerType(serveType))
		}

		return server.Serve(opts...)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "directory of handler files (default \"functions\")")
	serveCmd.Flags().StringVar(&serveType, "server", "", "front door: http, sqs or lambda (default \"http\")")
	rootCmd.AddCommand(serveCmd)
}
