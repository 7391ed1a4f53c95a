package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/storedeck/storedeck/internal/store"
)

func init() {
	tenantCmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	tenantCmd.AddCommand(newTenantCreateCmd())
	tenantCmd.AddCommand(newTenantListCmd())
	rootCmd.AddCommand(tenantCmd)
}

func newTenantCreateCmd() *cobra.Command {
	var (
		name string
		slug string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant",
		Long: `Create a tenant. Prompts for the name and slug when flags are
omitted.

Examples:
  storedeck tenant create
  storedeck tenant create --name "Acme Outfitters" --slug acme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name == "" {
				name, err = promptString("Tenant name", func(input string) error {
					if strings.TrimSpace(input) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			if slug == "" {
				defaultSlug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
				slug, err = promptStringWithDefault("Slug", defaultSlug, func(input string) error {
					if strings.ContainsAny(input, " /") {
						return fmt.Errorf("slug must not contain spaces or slashes")
					}
					return nil
				})
				if err != nil {
					return err
				}
			}

			return withStore(func(s *store.SQLiteStore) error {
				tenant, err := s.CreateTenant(context.Background(), name, slug)
				if err != nil {
					return fmt.Errorf("failed to create tenant: %w", err)
				}

				fmt.Printf("Created tenant '%s'\n", tenant.Name)
				fmt.Printf("  ID:   %s\n", tenant.ID)
				fmt.Printf("  Slug: %s\n", tenant.Slug)
				fmt.Println("\nPass the ID in the X-Tenant-ID header on API requests.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "tenant display name")
	cmd.Flags().StringVar(&slug, "slug", "", "tenant URL slug")

	return cmd
}

func newTenantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.SQLiteStore) error {
				tenants, err := s.ListTenants(context.Background())
				if err != nil {
					return fmt.Errorf("failed to list tenants: %w", err)
				}

				if len(tenants) == 0 {
					fmt.Println("No tenants yet. Run 'storedeck tenant create'.")
					return nil
				}

				fmt.Printf("%-36s  %-20s  %s\n", "ID", "SLUG", "NAME")
				for _, t := range tenants {
					fmt.Printf("%-36s  %-20s  %s\n", t.ID, t.Slug, t.Name)
				}
				return nil
			})
		},
	}
}

func promptString(label string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	result, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}
	return strings.TrimSpace(result), nil
}

func promptStringWithDefault(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	result, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}
	return strings.TrimSpace(result), nil
}
