package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
)

// NewGlossaryCmd lists glossary entries, looks one up or defines a new one.
func NewGlossaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary [term]",
		Short: "Show legal term definitions",
		Example: `  legalease glossary
  legalease glossary "force majeure"
  legalease glossary define escrow "money held by a third party until a deal closes"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cliCtx.GlossaryService(false)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				e, err := svc.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return PrintResult(cmd, glossaryResult([]*document.GlossaryEntry{e}))
			}
			entries, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return PrintResult(cmd, glossaryResult(entries))
		},
	}
	cmd.AddCommand(newGlossaryDefineCmd())
	return cmd
}

func newGlossaryDefineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "define <term> <definition...>",
		Short: "Store a definition in the local glossary",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cliCtx.GlossaryService(true)
			if err != nil {
				return err
			}
			e, err := svc.Define(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return PrintResult(cmd, glossaryResult([]*document.GlossaryEntry{e}))
		},
	}
}

func glossaryResult(entries []*document.GlossaryEntry) Result {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Term, e.Definition, string(e.Source)}
	}
	var data interface{} = entries
	if len(entries) == 1 {
		data = entries[0]
	}
	return Result{
		Data: data,
		Text: func(w *Writer) {
			for _, e := range entries {
				w.Line(fmt.Sprintf("%s: %s", e.Term, e.Definition))
			}
		},
		Headers: []string{"Term", "Definition", "Source"},
		Rows:    rows,
	}
}
