package main

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "fnserve",
	Short: "fnserve - run functions without the cloud",
	Long: `fnserve is a lightweight, self-hosted function runner.
Handlers are plain scripts invoked one process per event, with the
invocation context passed out of band.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
}
