package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vehictrl",
	Short: "VehiCtrl vehicle remote-control client and registration server.",
	Long:  ``,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/vehictrl.yaml)")
}
