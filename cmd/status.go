package cmd

import (
	"io/ioutil"
	"log"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/technodrive/vehictrl/internal/config"
	"github.com/technodrive/vehictrl/pkg/util"
)

// statusCmd queries the registration server's binding status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vehicle's registration status.",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showStatus(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.RequestTimeout}

	resp, err := client.Get(cfg.ServerURL + "/status")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	util.PrettyPrint(false, body)

	return nil
}
