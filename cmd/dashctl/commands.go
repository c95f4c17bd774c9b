package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"signaldesk/internal/backend"
	"signaldesk/internal/collection"
	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
	"signaldesk/internal/seed"
	"signaldesk/internal/storage"
)

const (
	searchFlag = "search"
	filterFlag = "filter"
)

func queryFlags(flags map[string]cobraflags.Flag) map[string]cobraflags.Flag {
	flags[searchFlag] = &cobraflags.StringFlag{
		Name:  searchFlag,
		Value: "",
		Usage: "Case-insensitive search term",
	}
	flags[filterFlag] = &cobraflags.StringFlag{
		Name:  filterFlag,
		Value: "",
		Usage: "Category filters as key=value pairs separated by commas",
	}
	return flags
}

func newListCommand() *cobra.Command {
	flags := queryFlags(backendFlags())
	cmd := &cobra.Command{
		Use:       "list <" + strings.Join(collection.Kinds, "|") + ">",
		Short:     "Print the records of a collection as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: collection.Kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(flags[searchFlag].GetString(), flags[filterFlag].GetString())
			if err != nil {
				return err
			}
			res, logger, err := openBackend(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeBackend(res, logger)

			out := cmd.OutOrStdout()
			b := res.Backend
			switch args[0] {
			case collection.KindUsers:
				return printFiltered(out, b.Users, q)
			case collection.KindAccounts:
				return printFiltered(out, b.Accounts, q)
			case collection.KindSources:
				return printFiltered(out, b.Sources, q)
			case collection.KindTransactions:
				return printFiltered(out, b.Transactions, q)
			default:
				return fmt.Errorf("unknown collection %q: must be one of %s", args[0], strings.Join(collection.Kinds, ", "))
			}
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func printFiltered[T any](w io.Writer, coll *collection.Collection[T], q collection.Query) error {
	recs, err := coll.Filter(q)
	if err != nil {
		return err
	}
	return printJSON(w, map[string]any{
		"items": recs,
		"count": len(recs),
		"total": coll.Len(),
	})
}

func newSummaryCommand() *cobra.Command {
	flags := queryFlags(backendFlags())
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate the selected transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := buildQuery(flags[searchFlag].GetString(), flags[filterFlag].GetString())
			if err != nil {
				return err
			}
			res, logger, err := openBackend(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeBackend(res, logger)

			txs, err := res.Backend.Transactions.Filter(q)
			if err != nil {
				return err
			}
			sum := core.Summarize(txs)
			fmt.Fprintf(cmd.OutOrStdout(), "Total volume: %s\nBuy orders:   %d\nSell orders:  %d\nCount:        %d\n",
				core.FormatMoney(sum.TotalVolume, "USD"), sum.BuyOrders, sum.SellOrders, sum.Count)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newSeedCommand() *cobra.Command {
	flags := backendFlags()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture records whose ids are missing from the sqlite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags[backendFlag].GetString() != string(backend.SQLiteBackend) {
				return fmt.Errorf("seed needs --%s=%s", backendFlag, backend.SQLiteBackend)
			}
			fx, err := seed.LoadOrDefault(flags[seedFileFlag].GetString())
			if err != nil {
				return err
			}
			res, logger, err := openBackend(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer closeBackend(res, logger)

			ctx := cmd.Context()
			b := res.Backend
			added := make(map[string]int, len(collection.Kinds))
			if added[collection.KindUsers], err = backend.SeedCollection(ctx, b.Users, fx.Users); err != nil {
				return err
			}
			if added[collection.KindAccounts], err = backend.SeedCollection(ctx, b.Accounts, fx.Accounts); err != nil {
				return err
			}
			if added[collection.KindSources], err = backend.SeedCollection(ctx, b.Sources, fx.Sources); err != nil {
				return err
			}
			if added[collection.KindTransactions], err = backend.SeedCollection(ctx, b.Transactions, fx.Transactions); err != nil {
				return err
			}

			logger.Info("Seed completed", applog.FieldOperation, applog.OpSeed, "added", added)
			return printJSON(cmd.OutOrStdout(), map[string]any{"added": added, "counts": b.Counts()})
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func newMigrateCommand() *cobra.Command {
	flags := backendFlags()
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to the sqlite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags[dbFlag].GetString()
			if err := storage.RunMigrations(path); err != nil {
				return err
			}
			version, dirty, err := storage.SchemaVersion(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (dirty=%t)\n", path, version, dirty)
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, flags)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
