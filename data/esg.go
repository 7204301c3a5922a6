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

// ESGRecord is a daily RepRisk observation. The risk index metrics are
// present on every tracked day; the incident fields are only populated on
// days a risk incident was reported.
type ESGRecord struct {
	Date        int32   `json:"date" parquet:"name=date, type=INT32, convertedtype=DATE"`
	CUSIP8      string  `json:"cusip8" parquet:"name=cusip8, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	RepRiskID   string  `json:"reprisk_id" parquet:"name=reprisk_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CompanyName *string `json:"company_name" parquet:"name=company_name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PrimaryISIN *string `json:"primary_isin" parquet:"name=primary_isin, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`

	CurrentRRI           *int64  `json:"current_rri" parquet:"name=current_rri, type=INT64, repetitiontype=OPTIONAL"`
	TrendRRI             *int64  `json:"trend_rri" parquet:"name=trend_rri, type=INT64, repetitiontype=OPTIONAL"`
	PeakRRI              *int64  `json:"peak_rri" parquet:"name=peak_rri, type=INT64, repetitiontype=OPTIONAL"`
	PeakRRIDate          *int32  `json:"peak_rri_date" parquet:"name=peak_rri_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	RepRiskRating        *string `json:"reprisk_rating" parquet:"name=reprisk_rating, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CountrySectorAverage *int64  `json:"country_sector_average" parquet:"name=country_sector_average, type=INT64, repetitiontype=OPTIONAL"`

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

func (esg *ESGRecord) Key() Key {
	return Key{CUSIP8: esg.CUSIP8, Date: esg.Date}
}

// HasIncident reports whether every core incident field is present
func (esg *ESGRecord) HasIncident() bool {
	return esg.IncidentDate != nil &&
		esg.StoryID != nil &&
		esg.Severity != nil &&
		esg.Reach != nil &&
		esg.Novelty != nil &&
		esg.Environment != nil &&
		esg.Social != nil &&
		esg.Governance != nil
}

// NormalizeIncident clears every incident field unless the incident is
// complete. Returns true if a partial incident was cleared.
func (esg *ESGRecord) NormalizeIncident() bool {
	if esg.HasIncident() {
		return false
	}

	partial := esg.IncidentDate != nil || esg.StoryID != nil || esg.UnsharpIncident != nil ||
		esg.RelatedCountries != nil || esg.RelatedCountriesCodes != nil ||
		esg.Severity != nil || esg.Reach != nil || esg.Novelty != nil ||
		esg.Environment != nil || esg.Social != nil || esg.Governance != nil

	esg.IncidentDate = nil
	esg.StoryID = nil
	esg.UnsharpIncident = nil
	esg.RelatedCountries = nil
	esg.RelatedCountriesCodes = nil
	esg.Severity = nil
	esg.Reach = nil
	esg.Novelty = nil
	esg.Environment = nil
	esg.Social = nil
	esg.Governance = nil

	return partial
}

func (esg *ESGRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CUSIP8", esg.CUSIP8)
	e.Str("RepRiskID", esg.RepRiskID)
	e.Str("Date", FormatDay(esg.Date))
	e.Bool("Incident", esg.HasIncident())
}
