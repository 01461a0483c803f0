package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/qrscan/internal/files"
	"github.com/harrylevesque/qrscan/internal/models"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear the scan history",
	}

	var (
		kind  string
		limit int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := files.ListOptions{Limit: limit}
			if kind != "" {
				k, ok := models.ParseKind(strings.ToLower(kind))
				if !ok {
					return fmt.Errorf("unknown kind %q", kind)
				}
				opts.Kind = k
			}
			return a.withStore(func(s files.ScanStore) error {
				scans, err := s.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.jsonOut {
					return a.printJSON(out, scans)
				}
				for _, sc := range scans {
					fmt.Fprintf(out, "%s  %s  %-7s  %s\n", sc.ID, sc.CreatedAt.Format("2006-01-02 15:04:05"), sc.Kind, oneLine(sc.Raw, 60))
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&kind, "kind", "", "only this kind")
	list.Flags().IntVar(&limit, "limit", 0, "maximum number of scans")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s files.ScanStore) error {
				sc, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printScan(cmd.OutOrStdout(), sc)
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s files.ScanStore) error {
				return s.Clear(cmd.Context())
			})
		},
	}

	cmd.AddCommand(list, show, clearCmd)
	return cmd
}

func (a *app) withStore(fn func(files.ScanStore) error) error {
	s, err := files.Open(a.cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	return fn(s)
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func mustCompactJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return b
}
