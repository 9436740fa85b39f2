package cmd

import (
	"github.com/spf13/cobra"
)

var rootDir string

func init() {
	RootCmd.AddCommand(InitCmd)
	RootCmd.AddCommand(RunCmd)
	RootCmd.PersistentFlags().StringVar(&rootDir, "home", "./tmhome", "Home directory of the workflow register node")
}

var RootCmd = cobra.Command{
	Use:   "flowledger",
	Short: "Selective-disclosure workflow register node",
}
