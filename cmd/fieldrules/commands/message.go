package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

func newMessageCmd(a *app) *cobra.Command {
	var (
		field  string
		params map[string]string
	)

	cmd := &cobra.Command{
		Use:   "message RULE",
		Short: "Render the dictionary message of a rule",
		Example: `  fieldrules message required --field email
  fieldrules message between --field age --param min=1 --param max=10 --locale fr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]any, len(params))
			for k, v := range params {
				values[k] = v
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), a.dict.Resolve(field, args[0], values))
			return err
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", validator.DefaultFieldName, "field name")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "template value as key=value, repeatable")
	return cmd
}
