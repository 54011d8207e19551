package commands

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"
)

func newDictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Inspect and share dictionaries",
	}
	cmd.AddCommand(
		newDictShowCmd(a),
		newDictPushCmd(a),
	)
	return cmd
}

func newDictShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the loaded locales and the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := struct {
				Locale  string   `json:"locale"`
				Locales []string `json:"locales"`
			}{
				Locale:  a.dict.Locale(),
				Locales: a.dict.Locales(),
			}
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for _, locale := range out.Locales {
				marker := " "
				if locale == out.Locale {
					marker = "*"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, locale); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newDictPushCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "push FILE",
		Short: "Publish a dictionary file to the Redis hash",
		Long: `Publish every locale of a YAML or JSON dictionary file to the Redis
hash given by --redis-key. Services loading dictionaries from the same
hash pick up the change on their next load.`,
		Example: `  fieldrules dict push locales/en.yaml --redis-url redis://localhost:6379/0`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			adapter, err := pathAdapter(args[0])
			if err != nil {
				return err
			}
			docs, err := adapter.Load(ctx)
			if err != nil {
				return errors.Wrapf(err, "reading %s", args[0])
			}
			if _, err := i18n.DecodeFragments(docs); err != nil {
				return errors.Wrapf(err, "decoding %s", args[0])
			}

			store, closeStore, err := a.dictionaryStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Publish(ctx, docs); err != nil {
				return err
			}

			locales := make([]string, 0, len(docs))
			for locale := range docs {
				locales = append(locales, locale)
			}
			slices.Sort(locales)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %v to %s\n", locales, store.Key())
			return err
		},
	}
}
