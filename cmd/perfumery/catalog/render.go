package catalogcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/storefront"
)

func printPerfumeList(w io.Writer, perfumes []storefront.Perfume) {
	if len(perfumes) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No perfumes found."))
		return
	}

	fmt.Fprintln(w)
	for _, p := range perfumes {
		fmt.Fprintf(w, "  %s  %s %s\n",
			cliui.IDStyle.Render(p.ID),
			cliui.NameStyle.Render(p.Name),
			cliui.DimStyle.Render("by "+p.Brand.Label()),
		)
		fmt.Fprintf(w, "      %s %s  %s  %s\n",
			cliui.Stars(p.AverageRating),
			cliui.DimStyle.Render(fmt.Sprintf("%.1f", p.AverageRating)),
			cliui.PriceStyle.Render(price(p.Price)),
			cliui.DimStyle.Render(fmt.Sprintf("%s, %dml, %s", p.Concentration, p.Volume, p.TargetAudience)),
		)
	}
	fmt.Fprintf(w, "\n  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d perfumes", len(perfumes))))
}

func printPerfume(w io.Writer, p *storefront.Perfume) {
	fmt.Fprintf(w, "\n  %s %s\n", cliui.TitleStyle.Render(p.Name), cliui.DimStyle.Render("by "+p.Brand.Label()))
	fmt.Fprintf(w, "  %s %s\n\n", cliui.Stars(p.AverageRating), cliui.DimStyle.Render(fmt.Sprintf("%.1f from %d reviews", p.AverageRating, len(p.Comments))))

	field(w, "ID", p.ID)
	field(w, "Price", cliui.PriceStyle.Render(price(p.Price)))
	field(w, "Volume", fmt.Sprintf("%dml", p.Volume))
	field(w, "Concentration", p.Concentration)
	field(w, "For", p.TargetAudience)
	field(w, "Stock", stock(p.Stock))
	if p.Ingredients != "" {
		field(w, "Ingredients", p.Ingredients)
	}
	if p.URI != "" {
		field(w, "Image", p.URI)
	}

	if p.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", p.Description)
	}

	if len(p.Comments) == 0 {
		fmt.Fprintf(w, "\n  %s\n", cliui.DimStyle.Render("No reviews yet."))
		return
	}

	fmt.Fprintf(w, "\n  %s\n", cliui.TitleStyle.Render("Reviews"))
	for _, c := range p.Comments {
		author := c.Author.Name
		if author == "" {
			author = "anonymous"
		}
		fmt.Fprintf(w, "\n  %s %s %s\n",
			cliui.Stars(float64(c.Rating)),
			cliui.NameStyle.Render(author),
			cliui.DimStyle.Render(c.CreatedAt.Format("2006-01-02")),
		)
		fmt.Fprintf(w, "    %s\n", c.Content)
	}
}

func printBrands(w io.Writer, brands []storefront.Brand) {
	if len(brands) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No brands found."))
		return
	}

	fmt.Fprintln(w)
	for _, b := range brands {
		line := fmt.Sprintf("  %s  %s", cliui.IDStyle.Render(b.ID), cliui.NameStyle.Render(b.Name))
		if b.Country != "" {
			line += " " + cliui.DimStyle.Render("("+b.Country+")")
		}
		fmt.Fprintln(w, line)
		if b.Description != "" {
			fmt.Fprintf(w, "      %s\n", cliui.DimStyle.Render(cliui.Fit(b.Description, 80)))
		}
	}
	fmt.Fprintln(w)
}

func printSimilar(w io.Writer, name string, res *storefront.SimilarResult) {
	fmt.Fprintf(w, "\n  %s %s %s\n", cliui.TitleStyle.Render("Similar to"), cliui.NameStyle.Render(name), sourceNote(res.Source))
	if len(res.Perfumes) == 0 {
		fmt.Fprintf(w, "\n  %s\n", cliui.DimStyle.Render("No similar perfumes found."))
		return
	}
	printPerfumeList(w, res.Perfumes)
}

func printSummary(w io.Writer, name string, res *storefront.SummaryResult, plain bool) error {
	fmt.Fprintf(w, "\n  %s %s %s\n\n", cliui.TitleStyle.Render("Review summary for"), cliui.NameStyle.Render(name), sourceNote(res.Source))

	if plain {
		fmt.Fprintf(w, "%s\n", strings.TrimSpace(res.Summary))
	} else {
		rendered, err := cliui.RenderMarkdown(res.Summary)
		if err != nil {
			return err
		}
		fmt.Fprint(w, rendered)
	}

	if res.ReviewsCount > 0 {
		fmt.Fprintf(w, "\n  %s\n", cliui.DimStyle.Render(fmt.Sprintf("Based on %d reviews", res.ReviewsCount)))
	}
	return nil
}

func field(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-14s", key)), cliui.ValueStyle.Render(value))
}

func price(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}

func stock(n int) string {
	if n <= 0 {
		return cliui.WarnStyle.Render("out of stock")
	}
	return fmt.Sprintf("%d in stock", n)
}

func sourceNote(source string) string {
	if source == "" {
		return ""
	}
	return cliui.DimStyle.Render("(" + source + ")")
}
