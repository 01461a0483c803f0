package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrylevesque/qrscan/internal/files"
	"github.com/harrylevesque/qrscan/internal/models"
	"github.com/harrylevesque/qrscan/internal/render"
	"github.com/harrylevesque/qrscan/internal/scanner"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		once bool
		save bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Classify decoded payloads read line by line from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := &scanner.Session{
				Decoder:  scanner.NewLineDecoder(cmd.InOrStdin()),
				Logger:   a.log,
				Source:   "stdin",
				AutoStop: once,
				OnResult: func(sc *models.Scan) { a.printScan(out, sc) },
				OnError: func(err error) {
					fmt.Fprintln(cmd.ErrOrStderr(), "scan error:", err)
				},
			}
			if save {
				store, err := files.Open(a.cfg)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer store.Close()
				s.Store = store
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			err := s.Run(ctx)
			a.log.Debug("watch finished", zap.Int64("scans", s.Count()))
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "stop after the first scan")
	cmd.Flags().BoolVar(&save, "save", false, "store scans in the history")
	return cmd
}

func (a *app) printScan(w io.Writer, sc *models.Scan) {
	fr := render.Format(sc.Payload)
	if a.jsonOut {
		// One object per line so the output can itself be piped.
		fmt.Fprintf(w, "%s\n", mustCompactJSON(struct {
			*models.Scan
			Fragment render.Fragment `json:"fragment"`
		}{sc, fr}))
		return
	}
	if sc.ID != "" {
		fmt.Fprintf(w, "[%s] ", sc.ID)
	}
	io.WriteString(w, fr.Text())
}
