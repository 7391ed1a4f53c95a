package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/storedeck/storedeck/internal/store"
)

var listTenant string

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List a tenant's A/B tests",
	Long:  `List a tenant's A/B tests with their status and statistics.`,
	RunE:  runListTests,
}

func init() {
	testsCmd.Flags().StringVarP(&listTenant, "tenant", "t", "", "tenant ID (required)")
	testsCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(testsCmd)
}

func runListTests(cmd *cobra.Command, args []string) error {
	return withStore(func(s *store.SQLiteStore) error {
		ctx := store.WithTenant(context.Background(), listTenant)

		tests, err := s.ListTests(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tests: %w", err)
		}

		if len(tests) == 0 {
			fmt.Println("No tests yet for this tenant.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATE\tVARIANTS\tVIEWS\tCONVERSIONS\tCREATED")

		for _, test := range tests {
			stats, err := s.GetVariantStats(ctx, test.ID)
			if err != nil {
				return fmt.Errorf("failed to get stats for test %s: %w", test.Name, err)
			}

			totalViews := 0
			totalConversions := 0
			for _, stat := range stats {
				totalViews += stat.Views
				totalConversions += stat.Conversions
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				test.ID,
				test.Name,
				strings.ToUpper(string(test.State)),
				len(test.Variants),
				formatNumber(totalViews),
				formatNumber(totalConversions),
				test.CreatedAt.Format("2006-01-02"),
			)
		}

		w.Flush()
		return nil
	})
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
