package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// NewHistoryCmd groups the commands over saved documents.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show and delete saved documents",
	}
	cmd.AddCommand(newHistoryListCmd(), newHistoryShowCmd(), newHistoryDeleteCmd())
	return cmd
}

// historyService returns an analysis service over an existing store, or an
// error when nothing was ever saved.
func historyService(cmd *cobra.Command) (analysis.Service, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	store, err := cliCtx.existingStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New(errors.ErrCodeDocumentNotFound, "no saved documents").WithDetail(cliCtx.StorePath)
	}
	return cliCtx.AnalysisService(true)
}

func newHistoryListCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		status   string
		filename string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved documents, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := historyService(cmd)
			if err != nil {
				return err
			}
			res, err := svc.ListDocuments(cmd.Context(), &analysis.ListInput{
				Page:     page,
				PageSize: pageSize,
				Status:   status,
				Filename: filename,
			})
			if err != nil {
				return err
			}
			r := summariesResult(res.Documents, res.Total)
			r.Data = res
			return PrintResult(cmd, r)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "documents per page (max 100)")
	cmd.Flags().StringVar(&status, "status", "", "only documents with this status")
	cmd.Flags().StringVar(&filename, "filename", "", "only documents whose filename contains this text")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <document-id>",
		Short: "Show a saved document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := historyService(cmd)
			if err != nil {
				return err
			}
			doc, err := svc.GetDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, documentResult(doc))
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <document-id>...",
		Aliases: []string{"rm"},
		Short:   "Delete saved documents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := historyService(cmd)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := svc.DeleteDocument(cmd.Context(), id); err != nil {
					return err
				}
			}
			return PrintResult(cmd, Result{
				Data: map[string][]string{"deleted": args},
				Text: func(w *Writer) {
					w.Line(fmt.Sprintf("Deleted %d document(s)", len(args)))
				},
			})
		},
	}
}
