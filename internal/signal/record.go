package signal

import "cinsignal/internal"

// Record is the canonical fixed-domain projection of one CIN snapshot.
// Every domain is always present; scalar leaves are nil when absent and
// repeated fields are always non-nil slices.
type Record struct {
	Identity             Identity             `json:"identity"`
	Classification       Classification       `json:"classification"`
	Market               Market               `json:"market"`
	Variant              Variant              `json:"variant"`
	Naming               Naming               `json:"naming"`
	VAT                  VAT                  `json:"vat"`
	TradeUnit            TradeUnit            `json:"trade_unit"`
	Size                 Size                 `json:"size"`
	Measurements         Measurements         `json:"measurements"`
	Alcohol              Alcohol              `json:"alcohol"`
	Healthcare           Healthcare           `json:"healthcare"`
	ConsumerGuidance     ConsumerGuidance     `json:"consumer_guidance"`
	Allergens            Allergens            `json:"allergens"`
	Ingredients          Ingredients          `json:"ingredients"`
	Preparation          Preparation          `json:"preparation"`
	Diet                 Diet                 `json:"diet"`
	Nutrition            Nutrition            `json:"nutrition"`
	ConsumerInstructions ConsumerInstructions `json:"consumer_instructions"`
	Marketing            Marketing            `json:"marketing"`
	Packaging            Packaging            `json:"packaging"`
	Handling             Handling             `json:"handling"`
	Sustainability       Sustainability       `json:"sustainability"`
	Safety               Safety               `json:"safety"`
	Sales                Sales                `json:"sales"`
	SalesRestrictions    SalesRestrictions    `json:"sales_restrictions"`
	Dates                Dates                `json:"dates"`
	Media                []MediaFile          `json:"media"`
}

type Party struct {
	GLN     *string `json:"gln"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type Identity struct {
	GTIN                *string `json:"gtin"`
	Brand               *string `json:"brand"`
	SupplierAssignedID  *string `json:"supplier_assigned_id"`
	TradeChannel        *string `json:"trade_channel"`
	InformationProvider Party   `json:"information_provider"`
	Manufacturer        Party   `json:"manufacturer"`
}

type Classification struct {
	GPCCode *string `json:"gpc_code"`
	GPCName *string `json:"gpc_name"`
}

type Market struct {
	TargetCountryCode *string `json:"target_country_code"`
	CountryOfOrigin   *string `json:"country_of_origin"`
}

type Colour struct {
	Code *string `json:"code"`
	Name *string `json:"name"`
}

type Variant struct {
	SupplierAssignedID *string `json:"supplier_assigned_id"`
	Colour             Colour  `json:"color"`
	Size               *string `json:"size"`
	NetContent         *string `json:"net_content"`
}

type Naming struct {
	DescriptionShort     []internal.LocalizedText `json:"description_short"`
	FunctionalName       []internal.LocalizedText `json:"functional_name"`
	RegulatedProductName []internal.LocalizedText `json:"regulated_product_name"`
}

type VAT struct {
	Type *string `json:"type"`
	Rate *string `json:"rate"`
}

// TradeUnit flags are nil when the source element is absent.
type TradeUnit struct {
	IsConsumerUnit  *bool `json:"is_consumer_unit"`
	IsBaseUnit      *bool `json:"is_base_unit"`
	IsVariableUnit  *bool `json:"is_variable_unit"`
	IsOrderableUnit *bool `json:"is_orderable_unit"`
	IsInvoiceUnit   *bool `json:"is_invoice_unit"`
}

type Size struct {
	Descriptive *string `json:"descriptive"`
	NetContent  *string `json:"net_content"`
}

type Nesting struct {
	Direction *string `json:"direction"`
	Increment *string `json:"increment"`
	Type      *string `json:"type"`
}

type Measurements struct {
	WidthMM      *string `json:"width_mm"`
	HeightMM     *string `json:"height_mm"`
	DepthMM      *string `json:"depth_mm"`
	GrossWeightG *string `json:"gross_weight_g"`
	NetWeightG   *string `json:"net_weight_g"`
	Nesting      Nesting `json:"nesting"`
}

type Alcohol struct {
	ABVPercent *string `json:"abv_percent"`
}

type Healthcare struct {
	PrescriptionType *string `json:"prescription_type"`
	IsOTC            bool    `json:"is_otc"`
}

type ConsumerGuidance struct {
	MinimumAge *string `json:"minimum_age"`
}

type Allergen struct {
	Type        *string `json:"type"`
	Containment *string `json:"containment"`
}

type Allergens struct {
	SpecificationAgency *string    `json:"specification_agency"`
	SpecificationName   *string    `json:"specification_name"`
	Items               []Allergen `json:"items"`
}

type Additive struct {
	Name        *string `json:"name"`
	Containment *string `json:"containment"`
}

type Ingredients struct {
	Food      []internal.LocalizedText `json:"food"`
	NonFood   []internal.LocalizedText `json:"non_food"`
	Additives []Additive               `json:"additives"`
}

type Preparation struct {
	TypeCode *string `json:"type_code"`
}

type DietType struct {
	Code            *string `json:"code"`
	MarkedOnPackage *bool   `json:"marked_on_package"`
}

type Diet struct {
	Description []internal.LocalizedText `json:"description"`
	Types       []DietType               `json:"types"`
}

type NutrientValue struct {
	Value *string `json:"value"`
	Unit  *string `json:"unit"`
}

type Nutrient struct {
	Type   *string         `json:"type"`
	Values []NutrientValue `json:"values"`
}

type Nutrition struct {
	BasisQuantity *string    `json:"basis_quantity"`
	Nutrients     []Nutrient `json:"nutrients"`
}

type ConsumerInstructions struct {
	Usage     []internal.LocalizedText `json:"usage"`
	Storage   []internal.LocalizedText `json:"storage"`
	Recycling []internal.LocalizedText `json:"recycling"`
}

type Marketing struct {
	Long     []internal.LocalizedText `json:"long"`
	Short    []internal.LocalizedText `json:"short"`
	Keywords []internal.LocalizedText `json:"keywords"`
}

type PackagingMaterial struct {
	MaterialType *string `json:"material_type"`
	Weight       *string `json:"weight"`
}

// Packaging.IsPriceOnPack keeps the non-binary logic code (TRUE, FALSE,
// UNSPECIFIED) verbatim.
type Packaging struct {
	Type          *string             `json:"type"`
	IsReturnable  *bool               `json:"is_returnable"`
	IsPriceOnPack *string             `json:"is_price_on_pack"`
	DepositID     *string             `json:"deposit_id"`
	Materials     []PackagingMaterial `json:"materials"`
}

type Stacking struct {
	Factor *string `json:"factor"`
	Type   *string `json:"type"`
}

type Handling struct {
	Instructions []string `json:"instructions"`
	Stacking     Stacking `json:"stacking"`
}

// Sustainability and transport codes are non-binary logic values and are
// not coerced.
type Sustainability struct {
	ContainsPesticide *string `json:"contains_pesticide"`
}

type Safety struct {
	IsDangerousSubstance  *bool   `json:"is_dangerous_substance"`
	RegulatedForTransport *string `json:"regulated_for_transport"`
}

type Sales struct {
	PriceComparisonValue *string `json:"price_comparison_value"`
	PriceComparisonUnit  *string `json:"price_comparison_unit"`
}

type SalesRestrictions struct {
	ConditionCode *string `json:"condition_code"`
	Restricted    bool    `json:"restricted"`
}

type Dates struct {
	FirstAvailableConsumer *string `json:"first_available_consumer"`
	StartAvailability      *string `json:"start_availability"`
	LastChange             *string `json:"last_change"`
	Effective              *string `json:"effective_date"`
	Publication            *string `json:"publication_date"`
}

type MediaFile struct {
	Type     *string `json:"type"`
	Format   *string `json:"format"`
	FileName *string `json:"file_name"`
	URI      *string `json:"uri"`
	Primary  *bool   `json:"primary"`
	WidthPx  *string `json:"width_px"`
	HeightPx *string `json:"height_px"`
	Size     *string `json:"size"`
}
