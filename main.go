package main

import (
	"os"

	"filegrid/cmd"
	"filegrid/cmd/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	rootCmd := &cobra.Command{
		Use:   "filegrid",
		Short: "A hierarchical file grid for the terminal",
		Long: `filegrid renders a hierarchy of files and folders as a flat,
navigable grid. Folders collapse and expand, items can be moved between
folders, and an optional upload endpoint accepts new files over HTTP.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	config.AddConfigFlag(rootCmd)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	}

	rootCmd.AddCommand(cmd.NewBrowseCmd(logger))
	rootCmd.AddCommand(cmd.NewServeCmd(logger))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
