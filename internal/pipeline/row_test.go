package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cinsignal/internal"
	"cinsignal/internal/signal"
	"cinsignal/internal/util"
)

func lt(lang, text string) internal.LocalizedText {
	return internal.LocalizedText{LanguageCode: util.StringPtr(lang), Text: text}
}

func sampleRecord() signal.Record {
	rec := signal.Empty()
	rec.Identity.GTIN = util.StringPtr("07310865071811")
	rec.Identity.Brand = util.StringPtr("Marabou")
	rec.Naming.DescriptionShort = []internal.LocalizedText{lt("en", "Milk chocolate"), lt("sv", "Mjölkchoklad"), lt("sv", "Choklad")}
	rec.Healthcare.IsOTC = true
	rec.Allergens.Items = []signal.Allergen{
		{Type: util.StringPtr("AM"), Containment: util.StringPtr("CONTAINS")},
		{Type: util.StringPtr("AN"), Containment: util.StringPtr("MAY_CONTAIN")},
	}
	rec.Media = []signal.MediaFile{
		{Type: util.StringPtr("PRODUCT_IMAGE"), URI: util.StringPtr("https://img/1.png"), Primary: util.BoolPtr(false)},
		{Type: util.StringPtr("SAFETY_DATA_SHEET"), URI: util.StringPtr("https://doc/sds.pdf")},
		{Type: util.StringPtr("PRODUCT_IMAGE"), URI: util.StringPtr("https://img/2.png"), Primary: util.BoolPtr(true)},
	}
	return rec
}

func TestFlattenRowPicksFirstExactLanguage(t *testing.T) {
	row := FlattenRow(sampleRecord(), "sv")

	require.Equal(t, "Mjölkchoklad", *row.DescriptionShort)
	require.Nil(t, row.FunctionalName)
	require.Equal(t, "07310865071811", *row.GTIN)
}

func TestFlattenRowNoLanguageFallback(t *testing.T) {
	row := FlattenRow(sampleRecord(), "fi")
	require.Nil(t, row.DescriptionShort)

	row = FlattenRow(sampleRecord(), "SV")
	require.Nil(t, row.DescriptionShort)
}

func TestFlattenRowJoinsLists(t *testing.T) {
	row := FlattenRow(sampleRecord(), "sv")

	require.Equal(t, "AM(CONTAINS) | AN(MAY_CONTAIN)", row.Allergens)
	require.Equal(t, "https://img/1.png | https://img/2.png", row.AllImageURLs)
	require.Equal(t, "https://img/2.png", *row.PrimaryImage)
	require.True(t, row.IsOTC)
}

func TestFlattenRowAllergenWithMissingParts(t *testing.T) {
	rec := signal.Empty()
	rec.Allergens.Items = []signal.Allergen{{Type: util.StringPtr("AC")}}

	row := FlattenRow(rec, "sv")
	require.Equal(t, "AC()", row.Allergens)
}

func TestFlattenRowEmptyRecord(t *testing.T) {
	row := FlattenRow(signal.Empty(), "sv")

	require.Empty(t, row.Allergens)
	require.Empty(t, row.AllImageURLs)
	require.Nil(t, row.PrimaryImage)
	require.False(t, row.IsOTC)
}

func TestFlatRowHeaderAndValues(t *testing.T) {
	row := FlattenRow(sampleRecord(), "sv")
	header := row.Header()
	values := row.Values()

	require.Len(t, values, len(header))
	require.Equal(t, "gtin", header[0])
	require.Contains(t, header, "description_short_sv")
	require.Contains(t, header, "marketing_text_sv")
	require.Equal(t, "all_image_urls", header[len(header)-1])

	m := row.Map()
	require.Equal(t, "Marabou", m["brand"])
	require.Equal(t, "true", m["is_otc"])
	require.Equal(t, "", m["vat_rate"])
}
