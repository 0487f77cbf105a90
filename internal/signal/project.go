package signal

import (
	"fmt"
	"log/slog"
	"sort"

	"cinsignal/internal"
	"cinsignal/internal/snapshot"
)

// Projector builds signal records from snapshots. It never mutates the
// snapshot and never fails: a domain that cannot be derived is left with
// absent leaves.
type Projector struct {
	log *slog.Logger
}

func NewProjector(log *slog.Logger) *Projector {
	if log == nil {
		log = slog.Default()
	}
	return &Projector{log: log}
}

// Project is a convenience for NewProjector(nil).Project.
func Project(root *snapshot.Node) Record {
	return NewProjector(nil).Project(root)
}

func (p *Projector) Project(root *snapshot.Node) Record {
	rec := Empty()

	p.derive("identity", func() { rec.Identity = identity(root) })
	p.derive("classification", func() {
		rec.Classification = Classification{
			GPCCode: text(root, tagGPCCode),
			GPCName: text(root, tagGPCName),
		}
	})
	p.derive("market", func() {
		rec.Market = Market{
			TargetCountryCode: text(root, tagTargetMarketCountry),
			CountryOfOrigin:   snapshot.FindFirstUnder(root, tagCountryOfOrigin, tagCountryCode).TextValue(),
		}
	})
	p.derive("variant", func() { rec.Variant = variant(root) })
	p.derive("naming", func() {
		rec.Naming = Naming{
			DescriptionShort:     localized(root, tagDescriptionShort),
			FunctionalName:       localized(root, tagFunctionalName),
			RegulatedProductName: localized(root, tagRegulatedProductName),
		}
	})
	p.derive("vat", func() {
		rec.VAT = VAT{Type: text(root, tagDutyFeeTaxTypeCode), Rate: text(root, tagDutyFeeTaxRate)}
	})
	p.derive("trade_unit", func() {
		rec.TradeUnit = TradeUnit{
			IsConsumerUnit:  flag(root, tagIsConsumerUnit, tokenTrueLower),
			IsBaseUnit:      flag(root, tagIsBaseUnit, tokenTrueLower),
			IsVariableUnit:  flag(root, tagIsVariableUnit, tokenTrueLower),
			IsOrderableUnit: flag(root, tagIsOrderableUnit, tokenTrueLower),
			IsInvoiceUnit:   flag(root, tagIsInvoiceUnit, tokenTrueLower),
		}
	})
	p.derive("size", func() {
		rec.Size = Size{Descriptive: text(root, tagDescriptiveSize), NetContent: text(root, tagNetContent)}
	})
	p.derive("measurements", func() {
		rec.Measurements = Measurements{
			WidthMM:      text(root, tagWidth),
			HeightMM:     text(root, tagHeight),
			DepthMM:      text(root, tagDepth),
			GrossWeightG: text(root, tagGrossWeight),
			NetWeightG:   text(root, tagNetWeight),
			Nesting:      nesting(root),
		}
	})
	p.derive("alcohol", func() { rec.Alcohol = Alcohol{ABVPercent: text(root, tagAlcoholByVolume)} })
	p.derive("healthcare", func() {
		prescription := text(root, tagPrescriptionType)
		rec.Healthcare = Healthcare{
			PrescriptionType: prescription,
			IsOTC:            prescription != nil && *prescription == tokenNoPrescription,
		}
	})
	p.derive("consumer_guidance", func() { rec.ConsumerGuidance = ConsumerGuidance{MinimumAge: minimumAge(root)} })
	p.derive("allergens", func() { rec.Allergens = allergens(root) })
	p.derive("ingredients", func() {
		rec.Ingredients = Ingredients{
			Food:      localized(root, tagIngredientStatement),
			NonFood:   localized(root, tagNonfoodIngredient),
			Additives: additives(root),
		}
	})
	p.derive("preparation", func() { rec.Preparation = Preparation{TypeCode: text(root, tagPreparationTypeCode)} })
	p.derive("diet", func() { rec.Diet = diet(root) })
	p.derive("nutrition", func() { rec.Nutrition = nutrition(root) })
	p.derive("consumer_instructions", func() {
		rec.ConsumerInstructions = ConsumerInstructions{
			Usage:     localized(root, tagUsageInstructions),
			Storage:   localized(root, tagStorageInstructions),
			Recycling: localized(root, tagRecyclingInstructions),
		}
	})
	p.derive("marketing", func() {
		rec.Marketing = Marketing{
			Long:     localized(root, tagMarketingMessage),
			Short:    localized(root, tagShortMarketingMessage),
			Keywords: localized(root, tagKeyWords),
		}
	})
	p.derive("packaging", func() { rec.Packaging = packaging(root) })
	p.derive("handling", func() { rec.Handling = handling(root) })
	p.derive("sustainability", func() {
		rec.Sustainability = Sustainability{ContainsPesticide: text(root, tagContainsPesticide)}
	})
	p.derive("safety", func() {
		rec.Safety = Safety{
			IsDangerousSubstance:  flag(root, tagDangerousSubstance, tokenTrueUpper),
			RegulatedForTransport: text(root, tagRegulatedForTransport),
		}
	})
	p.derive("sales", func() {
		rec.Sales = Sales{
			PriceComparisonValue: text(root, tagPriceComparisonValue),
			PriceComparisonUnit:  text(root, tagPriceComparisonType),
		}
	})
	p.derive("sales_restrictions", func() {
		condition := text(root, tagSalesConditionCode)
		rec.SalesRestrictions = SalesRestrictions{ConditionCode: condition, Restricted: condition != nil}
	})
	p.derive("dates", func() {
		rec.Dates = Dates{
			FirstAvailableConsumer: text(root, tagFirstAvailability),
			StartAvailability:      text(root, tagStartAvailability),
			LastChange:             text(root, tagLastChange),
			Effective:              text(root, tagEffectiveDate),
			Publication:            text(root, tagPublicationDate),
		}
	})
	p.derive("media", func() { rec.Media = media(root) })

	return rec
}

// derive runs one domain derivation. A panic inside it leaves that domain
// at its empty value and the rest of the record intact.
func (p *Projector) derive(domain string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("signal domain derivation failed", slog.String("domain", domain), slog.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}

// Empty returns a record with every domain present, every scalar absent
// and every repeated field an empty slice.
func Empty() Record {
	return Record{
		Naming: Naming{
			DescriptionShort:     []internal.LocalizedText{},
			FunctionalName:       []internal.LocalizedText{},
			RegulatedProductName: []internal.LocalizedText{},
		},
		Allergens:   Allergens{Items: []Allergen{}},
		Ingredients: Ingredients{Food: []internal.LocalizedText{}, NonFood: []internal.LocalizedText{}, Additives: []Additive{}},
		Diet:        Diet{Description: []internal.LocalizedText{}, Types: []DietType{}},
		Nutrition:   Nutrition{Nutrients: []Nutrient{}},
		ConsumerInstructions: ConsumerInstructions{
			Usage:     []internal.LocalizedText{},
			Storage:   []internal.LocalizedText{},
			Recycling: []internal.LocalizedText{},
		},
		Marketing: Marketing{
			Long:     []internal.LocalizedText{},
			Short:    []internal.LocalizedText{},
			Keywords: []internal.LocalizedText{},
		},
		Packaging: Packaging{Materials: []PackagingMaterial{}},
		Handling:  Handling{Instructions: []string{}},
		Media:     []MediaFile{},
	}
}

func identity(root *snapshot.Node) Identity {
	return Identity{
		GTIN:                text(root, tagGTIN),
		Brand:               text(root, tagBrandName),
		SupplierAssignedID:  supplierAssignedID(root),
		TradeChannel:        text(root, tagTradeChannel),
		InformationProvider: party(root, tagInformationProvider),
		Manufacturer:        party(root, tagManufacturer),
	}
}

// party reads identifiers scoped to one party element; gln and partyName
// recur under every party in the document.
func party(root *snapshot.Node, partyTag string) Party {
	return Party{
		GLN:     snapshot.FindFirstUnder(root, partyTag, tagGLN).TextValue(),
		Name:    snapshot.FindFirstUnder(root, partyTag, tagPartyName).TextValue(),
		Address: snapshot.FindFirstUnder(root, partyTag, tagPartyAddress).TextValue(),
	}
}

func supplierAssignedID(root *snapshot.Node) *string {
	for _, n := range snapshot.FindAll(root, tagAdditionalID) {
		if typ, ok := n.Attr(attrAdditionalIDType); ok && typ == tokenSupplierID {
			if v := n.TextValue(); v != nil {
				return v
			}
		}
	}
	return nil
}

func variant(root *snapshot.Node) Variant {
	colour := snapshot.FindFirst(root, tagColour)
	return Variant{
		SupplierAssignedID: supplierAssignedID(root),
		Colour: Colour{
			Code: text(colour, tagColourCode),
			Name: text(colour, tagColourDescription),
		},
		Size:       text(root, tagDescriptiveSize),
		NetContent: text(root, tagNetContent),
	}
}

func minimumAge(root *snapshot.Node) *string {
	for _, n := range snapshot.FindAll(root, tagMinimumUsage) {
		if unit, ok := n.Attr(attrUnitCode); ok && unit == tokenYears {
			return n.TextValue()
		}
	}
	return nil
}

func allergens(root *snapshot.Node) Allergens {
	out := Allergens{
		SpecificationAgency: text(root, tagAllergenAgency),
		SpecificationName:   text(root, tagAllergenSpecName),
		Items:               []Allergen{},
	}
	for _, group := range snapshot.FindAll(root, tagAllergen) {
		out.Items = append(out.Items, Allergen{
			Type:        text(group, tagAllergenTypeCode),
			Containment: text(group, tagLevelOfContainment),
		})
	}
	return out
}

func nesting(root *snapshot.Node) Nesting {
	return Nesting{
		Direction: text(root, tagNestingDirection),
		Increment: text(root, tagNestingIncrement),
		Type:      text(root, tagNestingType),
	}
}

func additives(root *snapshot.Node) []Additive {
	out := []Additive{}
	for _, group := range snapshot.FindAll(root, tagAdditiveInformation) {
		out = append(out, Additive{
			Name:        text(group, tagAdditiveName),
			Containment: text(group, tagLevelOfContainment),
		})
	}
	return out
}

func packaging(root *snapshot.Node) Packaging {
	out := Packaging{
		Type:          text(root, tagPackagingTypeCode),
		IsReturnable:  flag(root, tagPackagingReturnable, tokenTrueLower),
		IsPriceOnPack: text(root, tagPriceOnPack),
		DepositID:     text(root, tagDepositID),
		Materials:     []PackagingMaterial{},
	}
	for _, group := range snapshot.FindAll(root, tagPackagingMaterial) {
		out.Materials = append(out.Materials, PackagingMaterial{
			MaterialType: text(group, tagPackagingMaterialType),
			Weight:       text(group, tagPackagingMaterialQty),
		})
	}
	return out
}

func diet(root *snapshot.Node) Diet {
	out := Diet{Description: localized(root, tagDietTypeDescription), Types: []DietType{}}
	for _, group := range snapshot.FindAll(root, tagDietTypeInformation) {
		out.Types = append(out.Types, DietType{
			Code:            text(group, tagDietTypeCode),
			MarkedOnPackage: flag(group, tagDietMarkedOnPackage, tokenTrueUpper),
		})
	}
	return out
}

func nutrition(root *snapshot.Node) Nutrition {
	out := Nutrition{BasisQuantity: text(root, tagNutrientBasisQuantity), Nutrients: []Nutrient{}}
	for _, group := range snapshot.FindAll(root, tagNutrientDetail) {
		nutrient := Nutrient{Type: text(group, tagNutrientTypeCode), Values: []NutrientValue{}}
		for _, q := range snapshot.FindAll(group, tagQuantityContained) {
			nutrient.Values = append(nutrient.Values, NutrientValue{Value: q.TextValue(), Unit: q.AttrValue(attrUnitCode)})
		}
		out.Nutrients = append(out.Nutrients, nutrient)
	}
	return out
}

func handling(root *snapshot.Node) Handling {
	out := Handling{
		Instructions: []string{},
		Stacking: Stacking{
			Factor: text(root, tagStackingFactor),
			Type:   text(root, tagStackingFactorType),
		},
	}
	for _, n := range snapshot.FindAll(root, tagHandlingInstruction) {
		if v := n.TextValue(); v != nil {
			out.Instructions = append(out.Instructions, *v)
		}
	}
	return out
}

func media(root *snapshot.Node) []MediaFile {
	out := []MediaFile{}
	for _, group := range snapshot.FindAll(root, tagReferencedFileHeader) {
		out = append(out, MediaFile{
			Type:     text(group, tagReferencedFileTypeCode),
			Format:   text(group, tagFileFormatName),
			FileName: text(group, tagFileName),
			URI:      text(group, tagURI),
			Primary:  flag(group, tagIsPrimaryFile, tokenTrueUpper),
			WidthPx:  text(group, tagFilePixelWidth),
			HeightPx: text(group, tagFilePixelHeight),
			Size:     text(group, tagFileSize),
		})
	}
	return out
}

func text(node *snapshot.Node, suffix string) *string {
	return snapshot.FindFirst(node, suffix).TextValue()
}

// flag coerces by exact comparison with the field's true token. An absent
// field stays nil; "1", "yes" or a differently cased token are false.
func flag(node *snapshot.Node, suffix, trueToken string) *bool {
	v := text(node, suffix)
	if v == nil {
		return nil
	}
	b := *v == trueToken
	return &b
}

// localized collects every textual match in source order.
func localized(node *snapshot.Node, suffix string) []internal.LocalizedText {
	out := []internal.LocalizedText{}
	for _, n := range snapshot.FindAll(node, suffix) {
		v := n.TextValue()
		if v == nil {
			continue
		}
		out = append(out, internal.LocalizedText{LanguageCode: n.AttrValue(attrLanguageCode), Text: *v})
	}
	return out
}

// Collision is a document-wide suffix that matched more than one distinct tag.
type Collision struct {
	Suffix string
	Tags   []string
}

// Collisions reports suffix lookups whose matches span several distinct
// tags, which means the scalar picked by the projector may belong to an
// unrelated field.
func Collisions(root *snapshot.Node) []Collision {
	var out []Collision
	for _, suffix := range documentWideTags {
		seen := map[string]struct{}{}
		for _, n := range snapshot.FindAll(root, suffix) {
			seen[n.Tag] = struct{}{}
		}
		if len(seen) < 2 {
			continue
		}
		tags := make([]string, 0, len(seen))
		for tag := range seen {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		out = append(out, Collision{Suffix: suffix, Tags: tags})
	}
	return out
}
