// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package data

import (
	"github.com/rs/zerolog"
)

// PanelRecord is one (security, day) row of the analysis panel. It holds the
// Markit lending observation, the matching CRSP shares outstanding, the four
// lending indicators and, when RepRisk tracks the security on that day, the
// ESG metrics and incident.
type PanelRecord struct {
	Date           int32   `json:"date" parquet:"name=date, type=INT32, convertedtype=DATE"`
	CUSIP8         string  `json:"cusip8" parquet:"name=cusip8, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CUSIP          *string `json:"cusip" parquet:"name=cusip, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ISIN           *string `json:"isin" parquet:"name=isin, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	InstrumentName *string `json:"instrumentname" parquet:"name=instrumentname, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	MarketArea     *string `json:"marketarea" parquet:"name=marketarea, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	IndicativeFee          *float64 `json:"indicativefee" parquet:"name=indicativefee, type=DOUBLE, repetitiontype=OPTIONAL"`
	Utilisation            *float64 `json:"utilisation" parquet:"name=utilisation, type=DOUBLE, repetitiontype=OPTIONAL"`
	ShortLoanQuantity      *float64 `json:"shortloanquantity" parquet:"name=shortloanquantity, type=DOUBLE, repetitiontype=OPTIONAL"`
	QuantityOnLoan         *float64 `json:"quantityonloan" parquet:"name=quantityonloan, type=DOUBLE, repetitiontype=OPTIONAL"`
	LendableQuantity       *float64 `json:"lendablequantity" parquet:"name=lendablequantity, type=DOUBLE, repetitiontype=OPTIONAL"`
	LenderConcentration    *float64 `json:"lenderconcentration" parquet:"name=lenderconcentration, type=DOUBLE, repetitiontype=OPTIONAL"`
	BorrowerConcentration  *float64 `json:"borrowerconcentration" parquet:"name=borrowerconcentration, type=DOUBLE, repetitiontype=OPTIONAL"`
	InventoryConcentration *float64 `json:"inventoryconcentration" parquet:"name=inventoryconcentration, type=DOUBLE, repetitiontype=OPTIONAL"`

	CUSIP9 *string  `json:"cusip9" parquet:"name=cusip9, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Shrout *float64 `json:"shrout" parquet:"name=shrout, type=DOUBLE, repetitiontype=OPTIONAL"`

	ShortInterestRatio   *float64 `json:"short_interest_ratio" parquet:"name=short_interest_ratio, type=DOUBLE, repetitiontype=OPTIONAL"`
	LoanSupplyRatio      *float64 `json:"loan_supply_ratio" parquet:"name=loan_supply_ratio, type=DOUBLE, repetitiontype=OPTIONAL"`
	LoanUtilisationRatio *float64 `json:"loan_utilisation_ratio" parquet:"name=loan_utilisation_ratio, type=DOUBLE, repetitiontype=OPTIONAL"`
	LoanFee              *float64 `json:"loan_fee" parquet:"name=loan_fee, type=DOUBLE, repetitiontype=OPTIONAL"`

	RepRiskID             *string  `json:"reprisk_id" parquet:"name=reprisk_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CompanyName           *string  `json:"company_name" parquet:"name=company_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PrimaryISIN           *string  `json:"primary_isin" parquet:"name=primary_isin, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CurrentRRI            *int64   `json:"current_rri" parquet:"name=current_rri, type=INT64, repetitiontype=OPTIONAL"`
	TrendRRI              *int64   `json:"trend_rri" parquet:"name=trend_rri, type=INT64, repetitiontype=OPTIONAL"`
	PeakRRI               *int64   `json:"peak_rri" parquet:"name=peak_rri, type=INT64, repetitiontype=OPTIONAL"`
	PeakRRIDate           *int32   `json:"peak_rri_date" parquet:"name=peak_rri_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	RepRiskRating         *string  `json:"reprisk_rating" parquet:"name=reprisk_rating, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CountrySectorAverage  *int64   `json:"country_sector_average" parquet:"name=country_sector_average, type=INT64, repetitiontype=OPTIONAL"`
	IncidentDate          *int32   `json:"incident_date" parquet:"name=incident_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	StoryID               *int64   `json:"story_id" parquet:"name=story_id, type=INT64, repetitiontype=OPTIONAL"`
	UnsharpIncident       *float64 `json:"unsharp_incident" parquet:"name=unsharp_incident, type=DOUBLE, repetitiontype=OPTIONAL"`
	RelatedCountries      *string  `json:"related_countries" parquet:"name=related_countries, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	RelatedCountriesCodes *string  `json:"related_countries_codes" parquet:"name=related_countries_codes, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Severity              *float64 `json:"severity" parquet:"name=severity, type=DOUBLE, repetitiontype=OPTIONAL"`
	Reach                 *float64 `json:"reach" parquet:"name=reach, type=DOUBLE, repetitiontype=OPTIONAL"`
	Novelty               *float64 `json:"novelty" parquet:"name=novelty, type=DOUBLE, repetitiontype=OPTIONAL"`
	Environment           *bool    `json:"environment" parquet:"name=environment, type=BOOLEAN, repetitiontype=OPTIONAL"`
	Social                *bool    `json:"social" parquet:"name=social, type=BOOLEAN, repetitiontype=OPTIONAL"`
	Governance            *bool    `json:"governance" parquet:"name=governance, type=BOOLEAN, repetitiontype=OPTIONAL"`
}

// NewPanelRecord starts a panel row from a Markit observation
func NewPanelRecord(lending *LendingRecord) *PanelRecord {
	return &PanelRecord{
		Date:                   lending.Date,
		CUSIP8:                 lending.CUSIP8,
		CUSIP:                  lending.CUSIP,
		ISIN:                   lending.ISIN,
		InstrumentName:         lending.InstrumentName,
		MarketArea:             lending.MarketArea,
		IndicativeFee:          lending.IndicativeFee,
		Utilisation:            lending.Utilisation,
		ShortLoanQuantity:      lending.ShortLoanQuantity,
		QuantityOnLoan:         lending.QuantityOnLoan,
		LendableQuantity:       lending.LendableQuantity,
		LenderConcentration:    lending.LenderConcentration,
		BorrowerConcentration:  lending.BorrowerConcentration,
		InventoryConcentration: lending.InventoryConcentration,
	}
}

func (panel *PanelRecord) Key() Key {
	return Key{CUSIP8: panel.CUSIP8, Date: panel.Date}
}

// SetShares attaches the CRSP observation and derives the lending indicators.
// A nil shares record leaves shrout and both share-based ratios missing.
func (panel *PanelRecord) SetShares(shares *SharesOutstanding) {
	panel.CUSIP9 = nil
	panel.Shrout = nil

	if shares != nil {
		cusip9 := shares.CUSIP9
		panel.CUSIP9 = &cusip9
		panel.Shrout = copyFloat(shares.Shrout)
	}

	panel.ShortInterestRatio = ratio(panel.QuantityOnLoan, panel.Shrout)
	panel.LoanSupplyRatio = ratio(panel.LendableQuantity, panel.Shrout)
	panel.LoanUtilisationRatio = copyFloat(panel.Utilisation)
	panel.LoanFee = copyFloat(panel.IndicativeFee)
}

// SetESG attaches a RepRisk observation; nil leaves every ESG column missing
func (panel *PanelRecord) SetESG(esg *ESGRecord) {
	if esg == nil {
		return
	}

	reprisk := esg.RepRiskID
	panel.RepRiskID = &reprisk
	panel.CompanyName = esg.CompanyName
	panel.PrimaryISIN = esg.PrimaryISIN
	panel.CurrentRRI = esg.CurrentRRI
	panel.TrendRRI = esg.TrendRRI
	panel.PeakRRI = esg.PeakRRI
	panel.PeakRRIDate = esg.PeakRRIDate
	panel.RepRiskRating = esg.RepRiskRating
	panel.CountrySectorAverage = esg.CountrySectorAverage
	panel.IncidentDate = esg.IncidentDate
	panel.StoryID = esg.StoryID
	panel.UnsharpIncident = esg.UnsharpIncident
	panel.RelatedCountries = esg.RelatedCountries
	panel.RelatedCountriesCodes = esg.RelatedCountriesCodes
	panel.Severity = esg.Severity
	panel.Reach = esg.Reach
	panel.Novelty = esg.Novelty
	panel.Environment = esg.Environment
	panel.Social = esg.Social
	panel.Governance = esg.Governance
}

// Indicator returns the value of a lending indicator, nil when missing
func (panel *PanelRecord) Indicator(indicator Indicator) *float64 {
	switch indicator {
	case ShortInterestRatio:
		return panel.ShortInterestRatio
	case LoanSupplyRatio:
		return panel.LoanSupplyRatio
	case LoanUtilisationRatio:
		return panel.LoanUtilisationRatio
	case LoanFee:
		return panel.LoanFee
	default:
		return nil
	}
}

// Dimension returns the value of an ESG dimension; ok is false when the
// dimension is missing on this row
func (panel *PanelRecord) Dimension(dimension Dimension) (DimensionValue, bool) {
	switch dimension {
	case Severity:
		return numericDimension(panel.Severity)
	case Novelty:
		return numericDimension(panel.Novelty)
	case Reach:
		return numericDimension(panel.Reach)
	case Environment:
		return flagDimension(panel.Environment)
	case Social:
		return flagDimension(panel.Social)
	case Governance:
		return flagDimension(panel.Governance)
	default:
		return DimensionValue{}, false
	}
}

func (panel *PanelRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CUSIP8", panel.CUSIP8)
	e.Str("Date", FormatDay(panel.Date))
	if panel.Shrout != nil {
		e.Float64("Shrout", *panel.Shrout)
	}
	if panel.RepRiskID != nil {
		e.Str("RepRiskID", *panel.RepRiskID)
	}
}
