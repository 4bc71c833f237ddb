package alerting

import (
	"fmt"

	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/exposure"
)

var categoryStrategies = map[string]string{
	"cosmetic": "Switch to clean beauty products: Look for certified organic and EDC-free cosmetics. " +
		"Prioritize products with minimal ingredients.",
	"food": "Reduce food packaging exposure: Choose fresh, unpackaged foods. " +
		"Avoid heating food in plastic containers. Use glass or stainless steel.",
	"personal_care": "Choose natural personal care: Switch to fragrance-free, paraben-free, and phthalate-free products.",
	"household": "Use eco-friendly cleaning: Replace chemical cleaners with natural alternatives " +
		"like vinegar, baking soda, and castile soap.",
}

var edcTypeStrategies = map[string]string{
	"bpa": "Eliminate BPA: Use BPA-free water bottles and food containers. " +
		"Avoid canned foods with BPA linings. Never microwave plastic.",
	"phthalate": "Reduce phthalates: Avoid fragranced products (perfumes, air fresheners). " +
		"Choose phthalate-free nail polish and personal care items.",
	"paraben": "Go paraben-free: Read labels carefully and choose products labeled 'paraben-free'. " +
		"Focus on lotions, shampoos, and cosmetics.",
}

var edcReductionPlans = map[string][]string{
	"bpa": {
		"BPA Reduction Plan:",
		"1. Replace all plastic food containers with glass or stainless steel",
		"2. Use BPA-free water bottles (look for #2, #4, #5 plastics)",
		"3. Avoid canned foods or choose BPA-free cans",
		"4. Never heat food in plastic containers or with plastic wrap",
		"5. Choose fresh or frozen foods over canned when possible",
	},
	"phthalate": {
		"Phthalate Reduction Plan:",
		"1. Avoid all fragranced products (perfumes, air fresheners, scented candles)",
		"2. Choose phthalate-free personal care products",
		"3. Use fragrance-free laundry detergent and cleaning products",
		"4. Avoid vinyl/PVC products (shower curtains, flooring)",
		"5. Choose natural fiber clothing and bedding",
	},
	"paraben": {
		"Paraben Reduction Plan:",
		"1. Read all cosmetic labels and choose paraben-free options",
		"2. Replace shampoos, conditioners, and body washes",
		"3. Switch to paraben-free lotions and moisturizers",
		"4. Choose natural deodorants without parabens",
		"5. Look for preservative-free or naturally preserved products",
	},
	"heavy_metal": {
		"Heavy Metal Reduction Plan:",
		"1. Avoid cosmetics with lead, mercury, or cadmium",
		"2. Check traditional/ayurvedic products for heavy metal content",
		"3. Use stainless steel or cast iron cookware instead of non-stick",
		"4. Filter drinking water to remove heavy metals",
		"5. Choose organic produce to reduce pesticide exposure",
	},
}

const scanBeforeYouBuy = "Scan before you buy: Use the app to scan all new products before purchasing to avoid high-risk items."

// reductionStrategies builds the general plan from the two largest
// categories, the two largest EDC types and the top source.
func reductionStrategies(r *exposure.Report) []string {
	var out []string

	for _, entry := range top(exposure.Rank(r.ExposureByCategory), 2) {
		if s, ok := categoryStrategies[entry.Key]; ok {
			out = append(out, s)
		}
	}
	for _, entry := range top(exposure.Rank(r.ExposureByType), 2) {
		if s, ok := edcTypeStrategies[entry.Key]; ok {
			out = append(out, s)
		}
	}
	if len(r.TopSources) > 0 {
		out = append(out, fmt.Sprintf("Priority replacement: '%s' is your highest exposure source. "+
			"Find a safer alternative immediately.", r.TopSources[0].ProductName))
	}

	return append(out, scanBeforeYouBuy)
}

func trendStrategies(r *exposure.Report, increase float64) []string {
	out := []string{fmt.Sprintf("Your exposure increased %.0f%% this week. Review products you started using recently.", increase)}
	return append(out, reductionStrategies(r)...)
}

func edcStrategies(edcType string) []string {
	if plan, ok := edcReductionPlans[edcType]; ok {
		return append([]string(nil), plan...)
	}
	return []string{fmt.Sprintf("Focus on reducing %s exposure by choosing certified organic and EDC-free products.", edcType)}
}

func sourceStrategies(source datastore.TopSource, share float64) []string {
	return []string{
		"IMMEDIATE ACTION REQUIRED:",
		fmt.Sprintf("'%s' is responsible for %.0f%% of your EDC exposure.", source.ProductName, share),
		"",
		"Steps to take:",
		"1. Stop using this product immediately",
		"2. Scan alternative products in the same category",
		"3. Choose a replacement with a Hormonal Health Score above 70",
		"4. Check the app's alternative recommendations for this product",
		"",
		fmt.Sprintf("Replacing just this one product could reduce your exposure by %.0f%%!", share),
	}
}

func top(entries []exposure.RankedEntry, n int) []exposure.RankedEntry {
	return entries[:min(n, len(entries))]
}
