package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/qrscan/internal/models"
	"github.com/harrylevesque/qrscan/internal/payload"
	"github.com/harrylevesque/qrscan/internal/render"
)

type classified struct {
	Payload  models.Payload  `json:"payload"`
	Fragment render.Fragment `json:"fragment"`
}

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify one payload given as arguments or on stdin",
		Example: `  qrscan classify "WIFI:T:WPA;S:MyNet;P:secret123;H:false;"
  printf 'BEGIN:VCARD\nFN:Jane Doe\nEND:VCARD' | qrscan classify --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(data)
			}
			p := payload.Classify(raw)
			fr := render.Format(p)
			out := cmd.OutOrStdout()
			if a.jsonOut {
				return a.printJSON(out, classified{Payload: p, Fragment: fr})
			}
			_, err := io.WriteString(out, fr.Text())
			return err
		},
	}
}
