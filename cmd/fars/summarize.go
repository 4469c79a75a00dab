package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/willojs/FARS/internal/domain"
)

func newSummarizeCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summarize YEAR...",
		Short: "Count accidents per month for each year",
		Long: `Count accidents per month for each requested year. Years whose file
cannot be read are logged and left out; the command fails only when no year
loads.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.service().SummarizeYears(cmd.Context(), domain.ParseYears(args))
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "csv":
				return summary.WriteCSV(cmd.OutOrStdout())
			case "table":
				return writeTable(cmd.OutOrStdout(), summary)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table or csv")
	return cmd
}

// writeTable prints the wide summary aligned in columns, NA for empty cells.
func writeTable(w io.Writer, s *domain.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	years := s.Years()
	header := []string{domain.MonthColumn}
	for _, y := range years {
		header = append(header, strconv.Itoa(y))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, m := range s.Months() {
		cells := []string{strconv.Itoa(m)}
		for _, y := range years {
			if n, ok := s.Count(m, y); ok {
				cells = append(cells, strconv.Itoa(n))
			} else {
				cells = append(cells, "NA")
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}
