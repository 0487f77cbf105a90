package pipeline

import (
	"strconv"
	"strings"

	"cinsignal/internal"
	"cinsignal/internal/signal"
	"cinsignal/internal/util"
)

// ListDelimiter joins repeated values in a flat row.
const ListDelimiter = " | "

const fileTypeProductImage = "PRODUCT_IMAGE"

// FlatRow is the single-language, spreadsheet-shaped view of a signal
// record. It is presentation only: lists are joined and languages other
// than Language are dropped.
type FlatRow struct {
	Language string

	GTIN               *string
	Brand              *string
	SupplierAssignedID *string
	GPCCode            *string
	GPCName            *string
	TargetCountry      *string
	CountryOfOrigin    *string

	DescriptionShort     *string
	FunctionalName       *string
	RegulatedProductName *string

	SizeDescriptive *string
	NetContent      *string
	WidthMM         *string
	HeightMM        *string
	DepthMM         *string
	GrossWeightG    *string

	VATRate *string

	SalesConditionCode *string
	MinimumAge         *string
	IsOTC              bool
	AlcoholABV         *string

	Ingredients *string
	Allergens   string

	MarketingText *string
	Keywords      *string

	PrimaryImage *string
	AllImageURLs string
}

// FlattenRow projects rec into one row for language. A multilingual field
// takes the first entry whose language code equals language exactly; there
// is no fallback to another language.
func FlattenRow(rec signal.Record, language string) FlatRow {
	return FlatRow{
		Language: language,

		GTIN:               rec.Identity.GTIN,
		Brand:              rec.Identity.Brand,
		SupplierAssignedID: rec.Identity.SupplierAssignedID,
		GPCCode:            rec.Classification.GPCCode,
		GPCName:            rec.Classification.GPCName,
		TargetCountry:      rec.Market.TargetCountryCode,
		CountryOfOrigin:    rec.Market.CountryOfOrigin,

		DescriptionShort:     FirstText(rec.Naming.DescriptionShort, language),
		FunctionalName:       FirstText(rec.Naming.FunctionalName, language),
		RegulatedProductName: FirstText(rec.Naming.RegulatedProductName, language),

		SizeDescriptive: rec.Size.Descriptive,
		NetContent:      rec.Size.NetContent,
		WidthMM:         rec.Measurements.WidthMM,
		HeightMM:        rec.Measurements.HeightMM,
		DepthMM:         rec.Measurements.DepthMM,
		GrossWeightG:    rec.Measurements.GrossWeightG,

		VATRate: rec.VAT.Rate,

		SalesConditionCode: rec.SalesRestrictions.ConditionCode,
		MinimumAge:         rec.ConsumerGuidance.MinimumAge,
		IsOTC:              rec.Healthcare.IsOTC,
		AlcoholABV:         rec.Alcohol.ABVPercent,

		Ingredients: FirstText(rec.Ingredients.Food, language),
		Allergens:   joinAllergens(rec.Allergens.Items),

		MarketingText: FirstText(rec.Marketing.Long, language),
		Keywords:      FirstText(rec.Marketing.Keywords, language),

		PrimaryImage: primaryImage(rec.Media),
		AllImageURLs: joinImageURLs(rec.Media),
	}
}

// FirstText returns the first entry tagged with language, or nil.
func FirstText(items []internal.LocalizedText, language string) *string {
	for _, item := range items {
		if item.LanguageCode != nil && *item.LanguageCode == language {
			text := item.Text
			return &text
		}
	}
	return nil
}

// Header lists the column names; language-bound columns carry a suffix.
func (r FlatRow) Header() []string {
	lang := "_" + r.Language
	return []string{
		"gtin", "brand", "supplier_assigned_id", "gpc_code", "gpc_name", "target_country", "country_of_origin",
		"description_short" + lang, "functional_name" + lang, "regulated_product_name" + lang,
		"size_descriptive", "net_content", "width_mm", "height_mm", "depth_mm", "gross_weight_g",
		"vat_rate",
		"sales_condition_code", "minimum_age", "is_otc", "alcohol_abv",
		"ingredients" + lang, "allergens",
		"marketing_text" + lang, "keywords" + lang,
		"primary_image", "all_image_urls",
	}
}

// Values returns the cells in Header order; absent values are empty strings.
func (r FlatRow) Values() []string {
	return []string{
		util.Deref(r.GTIN), util.Deref(r.Brand), util.Deref(r.SupplierAssignedID), util.Deref(r.GPCCode), util.Deref(r.GPCName),
		util.Deref(r.TargetCountry), util.Deref(r.CountryOfOrigin),
		util.Deref(r.DescriptionShort), util.Deref(r.FunctionalName), util.Deref(r.RegulatedProductName),
		util.Deref(r.SizeDescriptive), util.Deref(r.NetContent), util.Deref(r.WidthMM), util.Deref(r.HeightMM), util.Deref(r.DepthMM), util.Deref(r.GrossWeightG),
		util.Deref(r.VATRate),
		util.Deref(r.SalesConditionCode), util.Deref(r.MinimumAge), strconv.FormatBool(r.IsOTC), util.Deref(r.AlcoholABV),
		util.Deref(r.Ingredients), r.Allergens,
		util.Deref(r.MarketingText), util.Deref(r.Keywords),
		util.Deref(r.PrimaryImage), r.AllImageURLs,
	}
}

// Map returns the row keyed by column name.
func (r FlatRow) Map() map[string]string {
	header := r.Header()
	values := r.Values()
	out := make(map[string]string, len(header))
	for i, h := range header {
		out[h] = values[i]
	}
	return out
}

func joinAllergens(items []signal.Allergen) string {
	parts := make([]string, 0, len(items))
	for _, a := range items {
		parts = append(parts, util.Deref(a.Type)+"("+util.Deref(a.Containment)+")")
	}
	return strings.Join(parts, ListDelimiter)
}

func primaryImage(files []signal.MediaFile) *string {
	for _, f := range files {
		if f.Primary != nil && *f.Primary {
			return f.URI
		}
	}
	return nil
}

func joinImageURLs(files []signal.MediaFile) string {
	parts := make([]string, 0, len(files))
	for _, f := range files {
		if f.Type == nil || *f.Type != fileTypeProductImage || f.URI == nil {
			continue
		}
		parts = append(parts, *f.URI)
	}
	return strings.Join(parts, ListDelimiter)
}
