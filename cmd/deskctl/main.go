// Command deskctl drives the admin record API from a terminal through the
// same cached, optimistic client the dashboard uses.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"domaindesk/internal/client/admin"
	"domaindesk/internal/client/mutation"
	"domaindesk/internal/client/querycache"
	"domaindesk/internal/client/transport"
)

const defaultURL = "http://localhost:8080/api/admin"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "deskctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if os.Getenv("DESKCTL_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	baseURL := os.Getenv("DESKCTL_URL")
	if baseURL == "" {
		baseURL = defaultURL
	}
	api := transport.New(baseURL,
		transport.WithToken(os.Getenv("DESKCTL_TOKEN")),
		transport.WithLogger(logger),
	)
	cache := querycache.New(querycache.WithLogger(logger), querycache.WithContext(ctx))
	client := admin.New(api, cache, mutation.WithNotifier(printNotifier{w: stderr}))
	defer cache.Wait()

	root := newRootCmd(client)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if admin.IsUnauthorized(err) {
		return fmt.Errorf("%w (set DESKCTL_TOKEN)", err)
	}
	return err
}

func newRootCmd(client *admin.Client) *cobra.Command {
	root := &cobra.Command{
		Use:   "deskctl",
		Short: "Manage domains, offers and consultations",
		Long: `deskctl reads and edits admin records through the cached API client.

Environment:
  DESKCTL_URL    API base URL (default ` + defaultURL + `)
  DESKCTL_TOKEN  session token
  DESKCTL_DEBUG  log every API call when set`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	root.AddGroup(
		&cobra.Group{ID: "queries", Title: "Queries:"},
		&cobra.Group{ID: "mutations", Title: "Mutations:"},
	)
	root.AddCommand(queryCommands(client)...)
	root.AddCommand(mutationCommands(client)...)
	return root
}

// emit writes a command result as indented JSON.
func emit(cmd *cobra.Command, out any) error {
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// printNotifier writes mutation outcomes for the operator.
type printNotifier struct {
	w io.Writer
}

func (n printNotifier) Success(_ context.Context, message string) {
	fmt.Fprintln(n.w, message)
}

func (n printNotifier) Failure(_ context.Context, message string, _ error) {
	fmt.Fprintln(n.w, "error:", message)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
