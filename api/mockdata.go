package api

import (
	"time"

	"github.com/scentshop/perfumery/pkg/storefront"
)

// seedPassword is the password of every seeded member.
const seedPassword = "password"

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

type seedMember struct {
	storefront.Member
	gender string
}

var seedMembers = []seedMember{
	{Member: storefront.Member{ID: "m1", Name: "Admin User", Email: "admin@example.com", YOB: 1990, IsAdmin: true, CreatedAt: date("2024-01-01T00:00:00Z")}, gender: "male"},
	{Member: storefront.Member{ID: "m2", Name: "John Doe", Email: "john@example.com", YOB: 1995, CreatedAt: date("2024-02-15T00:00:00Z")}, gender: "male"},
	{Member: storefront.Member{ID: "m3", Name: "Jane Smith", Email: "jane@example.com", YOB: 1992, CreatedAt: date("2024-03-10T00:00:00Z")}, gender: "female"},
	{Member: storefront.Member{ID: "m4", Name: "Michael Brown", Email: "michael@example.com", YOB: 1988, CreatedAt: date("2024-04-20T00:00:00Z")}, gender: "male"},
}

var seedBrands = []storefront.Brand{
	{ID: "b1", Name: "Chanel", Description: "French luxury fashion house specializing in haute couture and perfumes", Country: "France"},
	{ID: "b2", Name: "Dior", Description: "Iconic French luxury goods company known for elegant fragrances", Country: "France"},
	{ID: "b3", Name: "Tom Ford", Description: "American luxury brand offering bold and sophisticated scents", Country: "United States"},
	{ID: "b4", Name: "Creed", Description: "Historic Anglo-French perfume house crafting artisanal fragrances", Country: "France"},
	{ID: "b5", Name: "Jo Malone", Description: "British fragrance house known for elegant and understated scents", Country: "United Kingdom"},
	{ID: "b6", Name: "Versace", Description: "Italian luxury fashion company with bold, glamorous fragrances", Country: "Italy"},
}

func brandRef(id string) storefront.BrandRef {
	return storefront.BrandRef{Brand: storefront.Brand{ID: id}}
}

var seedPerfumes = []storefront.Perfume{
	{
		ID: "p1", Name: "Coco Mademoiselle", URI: "https://images.unsplash.com/photo-1541643600914-78b084683601?w=400",
		Price: 125, Volume: 100, Stock: 45, Concentration: "EDP", TargetAudience: "female", Brand: brandRef("b1"), AverageRating: 4.8,
		Description: "A fresh, oriental fragrance with a distinct personality and character. Vibrant orange immediately awakens the senses.",
		Ingredients: "Orange, Bergamot, Jasmine, Rose, Patchouli, Vanilla", CreatedAt: date("2024-01-15T00:00:00Z"),
	},
	{
		ID: "p2", Name: "Sauvage", URI: "https://images.unsplash.com/photo-1587017539504-67cfbddac569?w=400",
		Price: 110, Volume: 100, Stock: 60, Concentration: "EDT", TargetAudience: "male", Brand: brandRef("b2"), AverageRating: 4.6,
		Description: "Radically fresh composition, dictated by a name that has the ring of a manifesto. A powerful expression of freedom.",
		Ingredients: "Calabrian Bergamot, Pepper, Ambroxan, Patchouli", CreatedAt: date("2024-01-20T00:00:00Z"),
	},
	{
		ID: "p3", Name: "Black Orchid", URI: "https://images.unsplash.com/photo-1592945403244-b3fbafd7f539?w=400",
		Price: 155, Volume: 50, Stock: 30, Concentration: "EDP", TargetAudience: "unisex", Brand: brandRef("b3"), AverageRating: 4.7,
		Description: "A luxurious and sensual fragrance of rich dark accords. Black Orchid is a bold, dramatic scent with an alluring depth.",
		Ingredients: "Black Orchid, Spice, Dark Chocolate, Patchouli, Vanilla", CreatedAt: date("2024-02-01T00:00:00Z"),
	},
	{
		ID: "p4", Name: "Aventus", URI: "https://images.unsplash.com/photo-1594035910387-fea47794261f?w=400",
		Price: 435, Volume: 100, Stock: 15, Concentration: "EDP", TargetAudience: "male", Brand: brandRef("b4"), AverageRating: 4.9,
		Description: "Celebrates strength, power and success. Perfect for the confident modern man who knows his worth.",
		Ingredients: "Pineapple, Birch, Musk, Oakmoss, Ambergris", CreatedAt: date("2024-02-10T00:00:00Z"),
	},
	{
		ID: "p5", Name: "Wood Sage & Sea Salt", URI: "https://images.unsplash.com/photo-1523293182086-7651a899d37f?w=400",
		Price: 75, Volume: 100, Stock: 50, Concentration: "Cologne", TargetAudience: "unisex", Brand: brandRef("b5"), AverageRating: 4.3,
		Description: "Escape to the windswept shore with this mineral fragrance. Fresh, clean and utterly unique.",
		Ingredients: "Ambrette Seeds, Sea Salt, Sage, Red Algae, Grapefruit", CreatedAt: date("2024-02-15T00:00:00Z"),
	},
	{
		ID: "p6", Name: "Eros", URI: "https://images.unsplash.com/photo-1595425970377-c9703cf48b6e?w=400",
		Price: 95, Volume: 100, Stock: 40, Concentration: "EDT", TargetAudience: "male", Brand: brandRef("b6"), AverageRating: 4.5,
		Description: "Masculine and confident, the Eros fragrance fuses woody, oriental and fresh notes for a powerful perfume.",
		Ingredients: "Mint, Green Apple, Tonka Bean, Geranium, Vanilla", CreatedAt: date("2024-03-01T00:00:00Z"),
	},
	{
		ID: "p7", Name: "J'adore", URI: "https://images.unsplash.com/photo-1528821154947-1aa3d1b74941?w=400",
		Price: 135, Volume: 100, Stock: 55, Concentration: "EDP", TargetAudience: "female", Brand: brandRef("b2"), AverageRating: 4.7,
		Description: "A timeless fragrance celebrating the joy of living. An extraordinarily sensual floral bouquet.",
		Ingredients: "Ylang-Ylang, Damascus Rose, Jasmine, Tuberose", CreatedAt: date("2024-03-10T00:00:00Z"),
	},
	{
		ID: "p8", Name: "Tobacco Vanille", URI: "https://images.unsplash.com/photo-1585386959984-a4155224a1ad?w=400",
		Price: 250, Volume: 50, Stock: 20, Concentration: "EDP", TargetAudience: "unisex", Brand: brandRef("b3"), AverageRating: 4.8,
		Description: "Opulent. Warm. Iconic. Reinventing classic tobacco with creamy tonka bean, vanilla, and dried fruits.",
		Ingredients: "Tobacco Leaf, Vanilla, Cocoa, Tonka Bean, Dried Fruits", CreatedAt: date("2024-03-20T00:00:00Z"),
	},
	{
		ID: "p9", Name: "Bleu de Chanel", URI: "https://images.unsplash.com/photo-1563170351-be82bc888aa4?w=400",
		Price: 130, Volume: 100, Stock: 65, Concentration: "EDP", TargetAudience: "male", Brand: brandRef("b1"), AverageRating: 4.6,
		Description: "An ode to masculine freedom, an aromatic woody fragrance with a captivating trail.",
		Ingredients: "Grapefruit, Incense, Ginger, Cedar, Sandalwood", CreatedAt: date("2024-04-01T00:00:00Z"),
	},
	{
		ID: "p10", Name: "English Pear & Freesia", URI: "https://images.unsplash.com/photo-1547887537-6158d64c35b3?w=400",
		Price: 75, Volume: 100, Stock: 45, Concentration: "Cologne", TargetAudience: "female", Brand: brandRef("b5"), AverageRating: 4.4,
		Description: "The essence of autumn. The sensuous freshness of just-ripe pears wrapped in a bouquet of white freesias.",
		Ingredients: "Pear, Freesia, Patchouli, Amber, Rose", CreatedAt: date("2024-04-10T00:00:00Z"),
	},
	{
		ID: "p11", Name: "La Vie Est Belle", URI: "https://images.unsplash.com/photo-1557170334-a9632e77c6e4?w=400",
		Price: 120, Volume: 100, Stock: 50, Concentration: "EDP", TargetAudience: "female", Brand: brandRef("b2"), AverageRating: 4.5,
		Description: "The fragrance of happiness. A sweet, floral perfume that makes you feel beautiful and confident.",
		Ingredients: "Iris, Patchouli, Praline, Vanilla, Orange Blossom", CreatedAt: date("2024-04-20T00:00:00Z"),
	},
	{
		ID: "p12", Name: "Silver Mountain Water", URI: "https://images.unsplash.com/photo-1541643600914-78b084683601?w=400",
		Price: 365, Volume: 100, Stock: 25, Concentration: "EDP", TargetAudience: "unisex", Brand: brandRef("b4"), AverageRating: 4.6,
		Description: "A fresh, modern scent evoking sparkling streams running through the Swiss Alps.",
		Ingredients: "Bergamot, Mandarin, Green Tea, Blackcurrant, Musk", CreatedAt: date("2024-05-01T00:00:00Z"),
	},
}

type seedComment struct {
	id, perfume, author string
	rating              int
	content, createdAt  string
}

var seedComments = []seedComment{
	{"c1", "p1", "m2", 5, "Absolutely stunning fragrance! Long-lasting and elegant. My new signature scent.", "2024-06-01T10:30:00Z"},
	{"c2", "p1", "m3", 4, "Great scent for daily wear. A bit strong at first but settles nicely.", "2024-06-05T14:20:00Z"},
	{"c3", "p2", "m4", 5, "The best masculine fragrance I've ever owned. Gets compliments everywhere!", "2024-06-10T09:15:00Z"},
	{"c4", "p3", "m2", 5, "Sophisticated and unique. Perfect for evening wear.", "2024-06-12T16:45:00Z"},
	{"c5", "p4", "m3", 5, "Worth every penny! The scent is incredible and lasts all day.", "2024-06-15T11:00:00Z"},
	{"c6", "p5", "m4", 4, "Fresh and clean. Great for summer!", "2024-06-18T13:30:00Z"},
	{"c7", "p6", "m2", 4, "Bold and powerful. Not for the faint of heart!", "2024-06-20T15:20:00Z"},
	{"c8", "p7", "m3", 5, "Timeless classic. Always get compliments when wearing this.", "2024-06-22T10:10:00Z"},
}

type seedSummary struct {
	summary     string
	similar     []string
	lastUpdated time.Time
}

var seedSummaries = map[string]seedSummary{
	"p1": {
		summary:     "Users love this elegant and sophisticated fragrance. Highly praised for its long-lasting nature and versatility. Perfect for both day and evening wear. 95% positive sentiment.",
		similar:     []string{"p7", "p11"},
		lastUpdated: date("2024-06-25T00:00:00Z"),
	},
	"p2": {
		summary:     "Consistently rated as one of the best masculine fragrances. Users appreciate its fresh yet woody character. Great longevity and projection. 92% positive sentiment.",
		similar:     []string{"p9", "p6"},
		lastUpdated: date("2024-06-25T00:00:00Z"),
	},
	"p3": {
		summary:     "A bold, statement fragrance that divides opinion. Those who love it really love it. Best for evening and special occasions. 88% positive sentiment.",
		similar:     []string{"p8", "p4"},
		lastUpdated: date("2024-06-25T00:00:00Z"),
	},
	"p4": {
		summary:     "Legendary status in the fragrance community. Premium quality with exceptional performance. Users note its confidence-boosting character. 97% positive sentiment.",
		similar:     []string{"p2", "p9"},
		lastUpdated: date("2024-06-25T00:00:00Z"),
	},
}
