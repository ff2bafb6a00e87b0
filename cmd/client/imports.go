package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"chat-importer/internal/domain/dto"
	consts "chat-importer/pkg/constants"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *clientOptions) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "status <progress-id>",
		Short: "Show the progress of an import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			if wait {
				return waitForImport(cmd.Context(), client, args[0])
			}
			var p dto.ImportProgressResponse
			if err := client.get(cmd.Context(), "/imports/"+args[0], &p); err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the import finishes")
	return cmd
}

func newCancelCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <progress-id>",
		Short: "Request cancellation of an import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			var resp dto.CancelResponse
			if err := client.postJSON(cmd.Context(), "/imports/"+args[0]+"/cancel", nil, &resp); err != nil {
				return err
			}
			fmt.Println(resp.Status)
			return nil
		},
	}
}

func waitForImport(ctx context.Context, client *apiClient, progressID string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	last := ""
	for {
		var p dto.ImportProgressResponse
		if err := client.get(ctx, "/imports/"+progressID, &p); err != nil {
			return err
		}
		line := fmt.Sprintf("%s %d%% (%d/%d mesaj, %d atlandı)", p.Status, p.Percent, p.ProcessedMessages, p.TotalMessages, p.SkippedMessages)
		if line != last {
			fmt.Println(line)
			last = line
		}
		if consts.IsTerminal(p.Status) {
			if p.Status == consts.StatusFailed {
				return fmt.Errorf("import failed: %s", p.ErrorMessage)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
