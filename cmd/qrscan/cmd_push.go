package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// defaultServer can be overridden with QRSCAN_SERVER or --server.
const defaultServer = "http://localhost:8080"

func newPushCmd(a *app) *cobra.Command {
	var (
		server     string
		screenshot string
	)
	cmd := &cobra.Command{
		Use:   "push [text...]",
		Short: "Send a decoded payload to a running qrscan server",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				raw = string(data)
			}
			req := map[string]string{"text": raw, "source": "cli"}
			if screenshot != "" {
				img, err := os.ReadFile(screenshot)
				if err != nil {
					return fmt.Errorf("read screenshot: %w", err)
				}
				req["screenshot"] = base64.StdEncoding.EncodeToString(img)
			}
			body, status, err := postJSON(serverURL(server)+"/scans", req)
			if err != nil {
				return fmt.Errorf("post scan: %w", err)
			}
			if status != http.StatusCreated {
				return fmt.Errorf("server returned status %d: %s", status, strings.TrimSpace(string(body)))
			}
			out := cmd.OutOrStdout()
			if a.jsonOut {
				_, err := out.Write(body)
				return err
			}
			var created struct {
				ID          string `json:"id"`
				DisplayName string `json:"display_name"`
			}
			if err := json.Unmarshal(body, &created); err != nil {
				return fmt.Errorf("decode server response: %w", err)
			}
			fmt.Fprintf(out, "stored %s (%s)\n", created.ID, created.DisplayName)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "server base URL (default $QRSCAN_SERVER or "+defaultServer+")")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "PNG file captured with the scan")
	return cmd
}

func serverURL(flagValue string) string {
	u := defaultServer
	if env := os.Getenv("QRSCAN_SERVER"); env != "" {
		u = env
	}
	if flagValue != "" {
		u = flagValue
	}
	return strings.TrimRight(u, "/")
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

func postJSON(url string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	resp, err := httpClient.Post(url, "application/json", strings.NewReader(string(data)))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return b, resp.StatusCode, nil
}
