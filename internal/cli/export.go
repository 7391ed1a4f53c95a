package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/storedeck/storedeck/internal/store"
)

var (
	exportFormat string
	exportTenant string
)

var exportCmd = &cobra.Command{
	Use:   "export <test-id>",
	Short: "Export raw event data",
	Long: `Export a test's raw event data in CSV or JSON format.

Examples:
  storedeck export TEST_ID --tenant TENANT_ID --format csv > events.csv
  storedeck export TEST_ID --tenant TENANT_ID --format json > events.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	exportCmd.Flags().StringVarP(&exportTenant, "tenant", "t", "", "tenant ID (required)")
	exportCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	testID := args[0]

	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

	return withStore(func(s *store.SQLiteStore) error {
		ctx := store.WithTenant(context.Background(), exportTenant)

		// Verify test exists
		test, err := s.GetTest(ctx, testID)
		if err != nil {
			if err == store.ErrNotFound {
				return fmt.Errorf("test '%s' not found", testID)
			}
			return fmt.Errorf("failed to get test: %w", err)
		}

		events, err := s.GetEvents(ctx, testID)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}

		switch exportFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		default:
			w := csv.NewWriter(os.Stdout)
			if err := w.Write([]string{"test", "variant", "event_type", "visitor_id", "created_at"}); err != nil {
				return err
			}
			for _, e := range events {
				record := []string{
					test.Name,
					strconv.Itoa(e.Variant),
					e.EventType,
					e.VisitorID,
					e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		}
	})
}
