package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rahul4469/cro-analyzer/internal/models"
)

var sections = []string{"all", "overview", "trust", "copy", "seo"}

func newAnalyzeCmd(c *cli) *cobra.Command {
	var (
		section string
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <domain>",
		Short: "Run the full analysis of a domain and print it as JSON",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if slices.Contains(sections, section) {
				return nil
			}
			return fmt.Errorf("unknown section %q (want one of %v)", section, sections)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.svc.Site.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(c, pick(result, section), pretty)
		},
	}
	cmd.Flags().StringVar(&section, "section", "all", "part of the result to print: all, overview, trust, copy or seo")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func pick(a *models.SiteAnalysis, section string) any {
	switch section {
	case "overview":
		return a.Analysis
	case "trust":
		return a.TrustConversionData
	case "copy":
		return a.CopyAnalysisData
	case "seo":
		return a.SEOAnalysisData
	default:
		return a
	}
}

func newSEOCmd(c *cli) *cobra.Command {
	var (
		categories []string
		pretty     bool
	)
	cmd := &cobra.Command{
		Use:   "seo <domain>",
		Short: "Run only the SEO category analysis, optionally for selected categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := c.svc.SEO
			if len(categories) > 0 {
				cats := make([]models.Category, 0, len(categories))
				for _, s := range categories {
					cat, err := models.ParseCategory(s)
					if err != nil {
						return err
					}
					cats = append(cats, cat)
				}
				orch = orch.WithCategories(cats...)
			}

			site, err := c.svc.Site.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := orch.Analyze(cmd.Context(), site.HTML, site.Sitemap)
			if err != nil {
				return err
			}
			return printJSON(c, result, pretty)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "category to analyze (repeatable); all categories when omitted")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func printJSON(c *cli, v any, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(c.out, string(b))
	return err
}
