package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/fieldrules/pkg/async"
	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

type validateOptions struct {
	rules   string
	field   string
	values  map[string]string
	names   map[string]string
	initial bool
}

// validateReport is the JSON shape of one validated value.
type validateReport struct {
	Value       string            `json:"value"`
	Valid       bool              `json:"valid"`
	Required    *bool             `json:"required,omitempty"`
	Errors      []string          `json:"errors"`
	FailedRules map[string]string `json:"failed_rules,omitempty"`
}

func newValidateCmd(a *app) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate VALUE [VALUE...]",
		Short: "Validate values against a rule declaration",
		Long: `Validate one or more values against the same rule declaration.
Values are validated concurrently and reported in argument order.
The command exits with status 1 when any value is invalid.`,
		Example: `  fieldrules validate "" --rules required --field email
  fieldrules validate 15 --rules "between:1,10" --locale fr
  fieldrules validate a@b.co c@d.io --rules "required|email" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.rules, "rules", "r", "", `rule declaration, e.g. "required|min:3"`)
	flags.StringVarP(&opts.field, "field", "f", validator.DefaultFieldName, "field display name used in messages")
	flags.StringToStringVar(&opts.values, "value", nil, "cross-field value as key=value, repeatable")
	flags.StringToStringVar(&opts.names, "display", nil, "display name of another field as key=Name, repeatable")
	flags.BoolVar(&opts.initial, "initial", false, "initial pass: skip lazy rules")
	flags.Bool("bails", true, "stop at the first failing rule")
	flags.Bool("skip-optional", true, "skip rules for empty values that are not required")
	_ = cmd.MarkFlagRequired("rules")

	_ = a.v.BindPFlag("bails", flags.Lookup("bails"))
	_ = a.v.BindPFlag("skip-optional", flags.Lookup("skip-optional"))

	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, args []string, opts *validateOptions) error {
	ctx := cmd.Context()

	rules, err := a.registry.Normalize(opts.rules)
	if err != nil {
		return err
	}

	table := make(map[string]any, len(opts.values))
	for k, v := range opts.values {
		table[k] = v
	}

	vopts := []validator.ValidateOption{
		validator.WithName(opts.field),
		validator.WithValues(table),
		validator.WithNames(opts.names),
	}
	if a.v.IsSet("bails") {
		vopts = append(vopts, validator.WithBails(a.v.GetBool("bails")))
	}
	if a.v.IsSet("skip-optional") {
		vopts = append(vopts, validator.WithSkipIfEmpty(a.v.GetBool("skip-optional")))
	}
	if opts.initial {
		vopts = append(vopts, validator.Initial())
	}

	v := validator.New(
		validator.WithRegistry(a.registry),
		validator.WithMessages(a.dict),
		validator.WithConfig(a.cfg),
		validator.WithLogger(a.logger),
	)

	futures := make([]*async.Future[*validator.Result], len(args))
	for i, arg := range args {
		futures[i] = v.ValidateAsync(ctx, arg, rules, vopts...)
	}
	results, err := async.WaitAll(futures...)
	if err != nil {
		return err
	}

	reports := make([]validateReport, len(results))
	valid := true
	for i, res := range results {
		reports[i] = validateReport{
			Value:    args[i],
			Valid:    res.Valid,
			Required: res.Required,
			Errors:   res.Errors,
		}
		if !res.Valid {
			reports[i].FailedRules = res.FailedRules
			valid = false
		}
	}

	if a.jsonOutput() {
		err = writeJSON(cmd.OutOrStdout(), reports)
	} else {
		err = writeValidateText(cmd.OutOrStdout(), reports)
	}
	if err != nil {
		return err
	}

	if !valid {
		return ErrInvalid
	}
	return nil
}

func writeValidateText(w io.Writer, reports []validateReport) error {
	for _, r := range reports {
		status := "valid"
		if !r.Valid {
			status = "invalid"
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", strconv.Quote(r.Value), status); err != nil {
			return err
		}
		for _, msg := range r.Errors {
			if _, err := fmt.Fprintf(w, "  - %s\n", msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
