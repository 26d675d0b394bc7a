package cli

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-billing-console/backoffice"
	"github.com/jrsteele09/go-billing-console/guard"
	"github.com/spf13/cobra"
)

func NewAuditCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit log screens",
	}

	// paged adds a paginated listing subcommand.
	paged := func(use, short string, args cobra.PositionalArgs, list func(ctx context.Context, api *backoffice.API, args []string, p backoffice.Page) (json.RawMessage, error)) {
		var p backoffice.Page
		sub := &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: screen(opts, guard.RouteAdminAudit, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
				return list(ctx, api, args, p)
			}),
		}
		pageFlags(sub, &p)
		cmd.AddCommand(sub)
	}

	paged("list", "List all audit entries", cobra.NoArgs,
		func(ctx context.Context, api *backoffice.API, _ []string, p backoffice.Page) (json.RawMessage, error) {
			return api.Audit.All(ctx, p)
		})
	paged("by-user <user-id>", "List entries recorded for a user", cobra.ExactArgs(1),
		func(ctx context.Context, api *backoffice.API, args []string, p backoffice.Page) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return api.Audit.ByUser(ctx, id, p)
		})
	paged("by-action <action>", "List entries for an action", cobra.ExactArgs(1),
		func(ctx context.Context, api *backoffice.API, args []string, p backoffice.Page) (json.RawMessage, error) {
			return api.Audit.ByAction(ctx, args[0], p)
		})
	paged("by-entity <entity-type>", "List entries for an entity type", cobra.ExactArgs(1),
		func(ctx context.Context, api *backoffice.API, args []string, p backoffice.Page) (json.RawMessage, error) {
			return api.Audit.ByEntityType(ctx, args[0], p)
		})
	paged("failed", "List failed operations", cobra.NoArgs,
		func(ctx context.Context, api *backoffice.API, _ []string, p backoffice.Page) (json.RawMessage, error) {
			return api.Audit.Failed(ctx, p)
		})
	paged("search <keyword>", "Search audit entries", cobra.ExactArgs(1),
		func(ctx context.Context, api *backoffice.API, args []string, p backoffice.Page) (json.RawMessage, error) {
			return api.Audit.Search(ctx, args[0], p)
		})

	cmd.AddCommand(&cobra.Command{
		Use:   "trail <entity-type> <entity-id>",
		Short: "Show the history of one entity",
		Args:  cobra.ExactArgs(2),
		RunE: screen(opts, guard.RouteAdminAudit, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[1])
			if err != nil {
				return nil, err
			}
			return api.Audit.Trail(ctx, args[0], id)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show audit statistics",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAdminAudit, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			return api.Audit.Statistics(ctx)
		}),
	})

	return cmd
}
