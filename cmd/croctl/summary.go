package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rahul4469/cro-analyzer/internal/models"
)

func newSummaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Summarize saved SEO output (from `seo` or `analyze`) as a score table",
		Long: "Reads the JSON printed by `croctl seo`, `croctl analyze --section seo` or\n" +
			"`croctl analyze` from file, or from stdin when file is omitted or \"-\".",
		Args: cobra.MaximumNArgs(1),
		// works offline, so skip loading configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			seo, err := readSEO(in)
			if err != nil {
				return err
			}
			return writeSummary(c.out, seo)
		},
	}
}

// readSEO decodes either a bare SEO record or a full site analysis.
func readSEO(r io.Reader) (*models.SEOAnalysis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	var site struct {
		SEO json.RawMessage `json:"seoAnalysisData"`
	}
	if err := json.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if len(site.SEO) > 0 {
		data = site.SEO
	}

	var seo models.SEOAnalysis
	if err := json.Unmarshal(data, &seo); err != nil {
		return nil, fmt.Errorf("decode seo analysis: %w", err)
	}
	if len(seo.Categories) == 0 {
		return nil, fmt.Errorf("input holds no seo categories")
	}
	return &seo, nil
}

func writeSummary(out io.Writer, seo *models.SEOAnalysis) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSTATUS\tFACTORS\tAVG SCORE")
	for _, c := range models.AllCategories() {
		r, ok := seo.Categories[c]
		if !ok {
			continue
		}
		if !r.OK() {
			fmt.Fprintf(tw, "%s\tfailed\t-\t-\n", c)
			continue
		}
		factors := r.Factors()
		fmt.Fprintf(tw, "%s\tok\t%d\t%s\n", c, len(factors), averageScore(factors))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if seo.Error != "" {
		_, err := fmt.Fprintf(out, "\nOverall: %s\n", seo.Error)
		return err
	}
	fmt.Fprintf(out, "\nOverall: %s\n", seo.OverallAnalysis)
	for _, rec := range seo.OverallRecommendations {
		if rec.Priority != "" {
			fmt.Fprintf(out, "- [%s] %s\n", rec.Priority, rec.Recommendation)
			continue
		}
		fmt.Fprintf(out, "- %s\n", rec.Recommendation)
	}
	return nil
}

func averageScore(factors map[string]models.FactorRecord) string {
	if len(factors) == 0 {
		return "-"
	}
	var sum float64
	for _, f := range factors {
		sum += f.Score
	}
	return fmt.Sprintf("%.1f", sum/float64(len(factors)))
}
