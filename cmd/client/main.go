package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}

	root := &cobra.Command{
		Use:           "chat-importer-client",
		Short:         "Upload chat exports to a chat-importer server and follow their import",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("CHAT_IMPORTER_SERVER", "http://localhost:3000/api/v1"), "Server base URL")
	root.PersistentFlags().StringVar(&opts.user, "user", envOr("CHAT_IMPORTER_USER", ""), "User id sent as X-User-ID")

	root.AddCommand(
		newUploadCmd(opts),
		newStatusCmd(opts),
		newCancelCmd(opts),
	)
	return root
}

type clientOptions struct {
	server string
	user   string
}

func (o *clientOptions) client() (*apiClient, error) {
	if o.user == "" {
		return nil, fmt.Errorf("--user is required")
	}
	return newAPIClient(o.server, o.user), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
