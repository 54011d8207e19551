package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type ruleInfo struct {
	Name             string   `json:"name"`
	Params           []string `json:"params"`
	Lazy             bool     `json:"lazy"`
	ComputesRequired bool     `json:"computes_required"`
	HasMessage       bool     `json:"has_message"`
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rules",
		Aliases: []string{"list"},
		Short:   "List the registered rules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runRules(cmd)
		},
	}
}

func (a *app) runRules(cmd *cobra.Command) error {
	names := a.registry.Names()
	infos := make([]ruleInfo, 0, len(names))
	for _, name := range names {
		def, ok := a.registry.Lookup(name)
		if !ok {
			continue
		}
		params := make([]string, 0, len(def.Params))
		for _, p := range def.Params {
			params = append(params, p.Name)
		}
		infos = append(infos, ruleInfo{
			Name:             name,
			Params:           params,
			Lazy:             def.Lazy,
			ComputesRequired: def.ComputesRequired,
			HasMessage:       a.dict.HasRule(name),
		})
	}

	if a.jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), infos)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPARAMS\tFLAGS")
	for _, info := range infos {
		var flags []string
		if info.ComputesRequired {
			flags = append(flags, "require")
		}
		if info.Lazy {
			flags = append(flags, "lazy")
		}
		if !info.HasMessage {
			flags = append(flags, "no-message")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, dash(strings.Join(info.Params, ",")), dash(strings.Join(flags, ",")))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
