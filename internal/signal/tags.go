package signal

// Local-name suffixes queried by the projector. Tags listed in
// documentWideTags are looked up across the whole snapshot; the others
// are only queried under an already matched parent or group.
const (
	tagGTIN                   = "gtin"
	tagBrandName              = "brandName"
	tagAdditionalID           = "additionalTradeItemIdentification"
	tagTradeChannel           = "tradeItemTradeChannelCode"
	tagInformationProvider    = "informationProviderOfTradeItem"
	tagManufacturer           = "manufacturerOfTradeItem"
	tagGLN                    = "gln"
	tagPartyName              = "partyName"
	tagGPCCode                = "gpcCategoryCode"
	tagGPCName                = "gpcCategoryName"
	tagTargetMarketCountry    = "targetMarketCountryCode"
	tagCountryOfOrigin        = "countryOfOrigin"
	tagCountryCode            = "countryCode"
	tagColour                 = "colour"
	tagColourCode             = "colourCode"
	tagColourDescription      = "colourDescription"
	tagDescriptionShort       = "descriptionShort"
	tagFunctionalName         = "functionalName"
	tagRegulatedProductName   = "regulatedProductName"
	tagDutyFeeTaxTypeCode     = "dutyFeeTaxTypeCode"
	tagDutyFeeTaxRate         = "dutyFeeTaxRate"
	tagIsConsumerUnit         = "isTradeItemAConsumerUnit"
	tagIsBaseUnit             = "isTradeItemABaseUnit"
	tagIsVariableUnit         = "isTradeItemAVariableUnit"
	tagIsOrderableUnit        = "isTradeItemAnOrderableUnit"
	tagIsInvoiceUnit          = "isTradeItemAnInvoiceUnit"
	tagDescriptiveSize        = "descriptiveSizeDimension"
	tagNetContent             = "netContent"
	tagWidth                  = "width"
	tagHeight                 = "height"
	tagDepth                  = "depth"
	tagGrossWeight            = "grossWeight"
	tagNetWeight              = "netWeight"
	tagAlcoholByVolume        = "percentageOfAlcoholByVolume"
	tagPrescriptionType       = "prescriptionTypeCode"
	tagMinimumUsage           = "targetConsumerMinimumUsage"
	tagAllergenAgency         = "allergenSpecificationAgency"
	tagAllergenSpecName       = "allergenSpecificationName"
	tagAllergen               = "allergen"
	tagAllergenTypeCode       = "allergenTypeCode"
	tagLevelOfContainment     = "levelOfContainmentCode"
	tagIngredientStatement    = "ingredientStatement"
	tagNonfoodIngredient      = "nonfoodIngredientStatement"
	tagDietTypeDescription    = "dietTypeDescription"
	tagDietTypeInformation    = "dietTypeInformation"
	tagDietTypeCode           = "dietTypeCode"
	tagDietMarkedOnPackage    = "isDietTypeMarkedOnPackage"
	tagNutrientBasisQuantity  = "nutrientBasisQuantity"
	tagNutrientDetail         = "nutrientDetail"
	tagNutrientTypeCode       = "nutrientTypeCode"
	tagQuantityContained      = "quantityContained"
	tagUsageInstructions      = "consumerUsageInstructions"
	tagStorageInstructions    = "consumerStorageInstructions"
	tagRecyclingInstructions  = "consumerRecyclingInstructions"
	tagMarketingMessage       = "tradeItemMarketingMessage"
	tagShortMarketingMessage  = "shortTradeItemMarketingMessage"
	tagKeyWords               = "tradeItemKeyWords"
	tagPackagingTypeCode      = "packagingTypeCode"
	tagPackagingReturnable    = "isPackagingMarkedReturnable"
	tagDepositID              = "returnablePackageDepositIdentification"
	tagHandlingInstruction    = "handlingInstructionsCodeReference"
	tagStackingFactor         = "stackingFactor"
	tagStackingFactorType     = "stackingFactorTypeCode"
	tagDangerousSubstance     = "isDangerousSubstance"
	tagSalesConditionCode     = "consumerSalesConditionCode"
	tagStartAvailability      = "startAvailabilityDateTime"
	tagLastChange             = "lastChangeDateTime"
	tagEffectiveDate          = "effectiveDateTime"
	tagPublicationDate        = "publicationDateTime"
	tagReferencedFileHeader   = "referencedFileHeader"
	tagReferencedFileTypeCode = "referencedFileTypeCode"
	tagFileFormatName         = "fileFormatName"
	tagFileName               = "fileName"
	tagURI                    = "uniformResourceIdentifier"
	tagIsPrimaryFile          = "isPrimaryFile"
	tagFilePixelWidth         = "filePixelWidth"
	tagFilePixelHeight        = "filePixelHeight"
	tagFileSize               = "fileSize"
	tagPartyAddress           = "partyAddress"
	tagNestingDirection       = "nestingDirectionCode"
	tagNestingIncrement       = "nestingIncrement"
	tagNestingType            = "nestingTypeCode"
	tagAdditiveInformation    = "additiveInformation"
	tagAdditiveName           = "additiveName"
	tagPreparationTypeCode    = "preparationTypeCode"
	tagPriceOnPack            = "isPriceOnPack"
	tagPackagingMaterial      = "packagingMaterial"
	tagPackagingMaterialType  = "packagingMaterialTypeCode"
	tagPackagingMaterialQty   = "packagingMaterialCompositionQuantity"
	tagContainsPesticide      = "doesTradeItemContainPesticide"
	tagRegulatedForTransport  = "isRegulatedForTransportation"
	tagPriceComparisonValue   = "priceComparisonMeasurement"
	tagPriceComparisonType    = "priceComparisonContentTypeCode"
	tagFirstAvailability      = "consumerFirstAvailabilityDateTime"
)

// Attribute names and code-list tokens. GS1 modules disagree on boolean
// casing, so every flag names its own true token.
const (
	attrLanguageCode     = "languageCode"
	attrUnitCode         = "measurementUnitCode"
	attrAdditionalIDType = "additionalTradeItemIdentificationTypeCode"

	tokenTrueLower      = "true"
	tokenTrueUpper      = "TRUE"
	tokenYears          = "ANN"
	tokenNoPrescription = "NO_PRESCRIPTION_REQUIRED"
	tokenSupplierID     = "SUPPLIER_ASSIGNED"
)

var documentWideTags = []string{
	tagGTIN, tagBrandName, tagTradeChannel, tagGPCCode, tagGPCName, tagTargetMarketCountry,
	tagDutyFeeTaxTypeCode, tagDutyFeeTaxRate, tagIsConsumerUnit, tagIsBaseUnit, tagIsVariableUnit,
	tagIsOrderableUnit, tagIsInvoiceUnit, tagDescriptiveSize, tagNetContent, tagWidth, tagHeight,
	tagDepth, tagGrossWeight, tagNetWeight, tagAlcoholByVolume, tagPrescriptionType,
	tagAllergenAgency, tagAllergenSpecName, tagNutrientBasisQuantity, tagPackagingTypeCode,
	tagPackagingReturnable, tagDepositID, tagStackingFactor, tagStackingFactorType,
	tagDangerousSubstance, tagSalesConditionCode, tagStartAvailability, tagLastChange,
	tagEffectiveDate, tagPublicationDate, tagNestingDirection, tagNestingIncrement, tagNestingType,
	tagPreparationTypeCode, tagPriceOnPack, tagContainsPesticide, tagRegulatedForTransport,
	tagPriceComparisonValue, tagPriceComparisonType, tagFirstAvailability,
}
