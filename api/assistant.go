package api

import (
	"fmt"
	"strings"

	"github.com/scentshop/perfumery/pkg/storefront"
)

// answer composes the assistant's reply to question, citing matching
// catalog entries when includeContext is set.
func (s *store) answer(question string, includeContext, hasImage bool) string {
	var catalog []storefront.Perfume
	if includeContext {
		catalog = s.catalogMatches(question, contextPerfumes)
	}
	return compose(question, catalog, hasImage)
}

// digest writes a review summary from the comments on p.
func digest(p storefront.Perfume, comments []storefront.Comment) string {
	if len(comments) == 0 {
		return fmt.Sprintf("No reviews yet for %s. Based on its notes of %s, expect a %s %s.",
			p.Name, strings.ToLower(p.Ingredients), audienceWord(p.TargetAudience), concentrationName(p.Concentration))
	}

	total, positive := 0, 0
	for _, c := range comments {
		total += c.Rating
		if c.Rating >= 4 {
			positive++
		}
	}
	avg := float64(total) / float64(len(comments))

	noun := "reviews"
	if len(comments) == 1 {
		noun = "review"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on %d %s, %s averages %.1f out of 5.", len(comments), noun, p.Name, avg)
	fmt.Fprintf(&b, " Reviewers most recently said: %q.", comments[0].Content)
	fmt.Fprintf(&b, " %d%% positive sentiment.", positive*100/len(comments))
	return b.String()
}

func audienceWord(audience string) string {
	switch audience {
	case "male":
		return "masculine"
	case "female":
		return "feminine"
	default:
		return "unisex"
	}
}

func concentrationName(c string) string {
	switch strings.ToUpper(c) {
	case "EDP":
		return "eau de parfum"
	case "EDT":
		return "eau de toilette"
	case "EXTRAIT":
		return "extrait de parfum"
	default:
		return strings.ToLower(c)
	}
}

type topic struct {
	keywords []string
	answer   string
}

var topics = []topic{
	{
		keywords: []string{"edp", "edt", "concentration", "eau de"},
		answer: "**Concentration** decides how long a perfume lasts. An *eau de parfum* (EDP) carries " +
			"15-20% fragrance oils and usually wears for 6-8 hours. An *eau de toilette* (EDT) sits " +
			"around 5-15% and feels lighter, fading after 3-5 hours. Colognes are lighter still.",
	},
	{
		keywords: []string{"summer", "hot", "fresh", "beach"},
		answer: "For **summer**, reach for fresh citrus, aquatic and green notes. They project " +
			"cleanly in the heat without becoming cloying.",
	},
	{
		keywords: []string{"evening", "night", "date", "winter"},
		answer: "For **evening wear**, richer accords such as vanilla, tobacco, amber and dark " +
			"florals give depth and a longer trail.",
	},
	{
		keywords: []string{"office", "work", "daily", "everyday"},
		answer: "For **everyday wear**, pick something versatile with moderate projection, " +
			"like a soft floral or a woody citrus.",
	},
	{
		keywords: []string{"similar", "like", "alternative"},
		answer: "Fragrances feel **similar** when they share key notes. Look for overlapping " +
			"top and base notes rather than the same brand.",
	},
}

// compose writes the assistant's markdown answer to question. With
// catalog set, the answer recommends perfumes from the store.
func compose(question string, catalog []storefront.Perfume, hasImage bool) string {
	q := strings.ToLower(question)

	var parts []string
	if hasImage {
		parts = append(parts, "Thanks for the photo. I've taken it into account along with your question.")
	}

	for _, t := range topics {
		for _, k := range t.keywords {
			if containsWord(q, k) {
				parts = append(parts, t.answer)
				break
			}
		}
	}

	if len(catalog) > 0 {
		var b strings.Builder
		b.WriteString("From our collection, you might enjoy:\n")
		for _, p := range catalog {
			fmt.Fprintf(&b, "\n- **%s** by %s: %s, $%.0f, rated %.1f/5. Notes of %s.",
				p.Name, p.Brand.Label(), p.Concentration, p.Price, p.AverageRating, p.Ingredients)
		}
		parts = append(parts, b.String())
	}

	if len(parts) == 0 || hasImage && len(parts) == 1 {
		parts = append(parts, "Tell me which notes or perfumes you already love and "+
			"I'll suggest fragrances to match.")
	}

	return strings.Join(parts, "\n\n")
}
