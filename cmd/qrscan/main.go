package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/qrscan/internal/utils"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	jsonOut    bool

	cfg *utils.Config
	log *utils.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "qrscan",
		Short: "Classify decoded QR and barcode payloads",
		Long: `qrscan turns decoded QR/barcode text into typed payloads
(url, email, phone, sms, wifi, contact, geo, text) and keeps a scan history.

Pipe a line-oriented decoder into "qrscan watch", for example:
  zbarcam --raw | qrscan watch --save`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			level := "warn"
			if a.verbose {
				level = "debug"
			}
			log, err := utils.NewLogger(cfg.LogFile, level)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (JSON or YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "machine-readable output")

	root.AddCommand(
		newClassifyCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
		newPushCmd(a),
	)
	return root
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
