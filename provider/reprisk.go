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
package provider

import (
	"context"
	"time"

	"github.com/penny-vault/pvesg/cache"
	"github.com/penny-vault/pvesg/data"
	"github.com/penny-vault/pvesg/wrds"
	"github.com/rs/zerolog"
)

const repRiskQuery = `SELECT
	m.reprisk_id,
	m.date,
	ci.company_name,
	ci.primary_isin,
	m.current_rri,
	m.trend_rri,
	m.peak_rri,
	m.peak_rri_date,
	m.reprisk_rating,
	m.country_sector_average,
	ri.incident_date,
	ri.story_id,
	ri.unsharp_incident,
	ri.related_countries,
	ri.related_countries_codes,
	ri.severity,
	ri.reach,
	ri.novelty,
	ri.environment,
	ri.social,
	ri.governance
FROM reprisk_v2.v2_metrics AS m
LEFT JOIN reprisk_v2.v2_company_identifiers AS ci
	ON m.reprisk_id = ci.reprisk_id
LEFT JOIN reprisk_v2.v2_risk_incidents AS ri
	ON m.reprisk_id = ri.reprisk_id AND m.date = ri.incident_date
WHERE m.date BETWEEN $1 AND $2
	AND ci.primary_isin IS NOT NULL
	AND ci.no_reported_risk_exposure = 'false'`

type repRiskRow struct {
	RepRiskID            string     `db:"reprisk_id"`
	Date                 time.Time  `db:"date"`
	CompanyName          *string    `db:"company_name"`
	PrimaryISIN          *string    `db:"primary_isin"`
	CurrentRRI           *int64     `db:"current_rri"`
	TrendRRI             *int64     `db:"trend_rri"`
	PeakRRI              *int64     `db:"peak_rri"`
	PeakRRIDate          *time.Time `db:"peak_rri_date"`
	RepRiskRating        *string    `db:"reprisk_rating"`
	CountrySectorAverage *int64     `db:"country_sector_average"`

	IncidentDate          *time.Time `db:"incident_date"`
	StoryID               *int64     `db:"story_id"`
	UnsharpIncident       *float64   `db:"unsharp_incident"`
	RelatedCountries      *string    `db:"related_countries"`
	RelatedCountriesCodes *string    `db:"related_countries_codes"`
	Severity              *float64   `db:"severity"`
	Reach                 *float64   `db:"reach"`
	Novelty               *float64   `db:"novelty"`
	Environment           *bool      `db:"environment"`
	Social                *bool      `db:"social"`
	Governance            *bool      `db:"governance"`
}

type RepRisk struct{}

func (repRisk *RepRisk) Name() string {
	return "RepRisk"
}

func (repRisk *RepRisk) Description() string {
	return `RepRisk screens public sources for environmental, social and governance risk incidents. Each company carries a daily RepRisk Index; incidents are scored for severity, reach and novelty and flagged by ESG pillar.`
}

func (repRisk *RepRisk) Datasets() map[string]Dataset {
	return map[string]Dataset{
		"Risk Metrics and Incidents": {
			Name:        "Risk Metrics and Incidents",
			Description: "Daily RRI metrics joined with the incidents reported on the same day.",
			Artifact:    data.RepRiskKey,
			Tables:      []string{"reprisk_v2.v2_metrics", "reprisk_v2.v2_company_identifiers", "reprisk_v2.v2_risk_incidents"},
			DateRange:   sinceInception(2007),
		},
	}
}

// Load returns the cached RepRisk artifact or pulls it for dateRange
func (repRisk *RepRisk) Load(ctx context.Context, conn wrds.Conn, store *cache.Store, dateRange data.DateRange, opts cache.Options) ([]*data.ESGRecord, error) {
	return cache.Memoize(ctx, store, data.RepRiskKey, opts, dateRange, func(ctx context.Context) ([]*data.ESGRecord, error) {
		return repRisk.Pull(ctx, conn, dateRange)
	})
}

// Pull queries the risk metrics for dateRange. Rows whose ISIN does not
// yield a CUSIP are kept with an empty CUSIP8 and never match a security.
func (repRisk *RepRisk) Pull(ctx context.Context, conn wrds.Conn, dateRange data.DateRange) ([]*data.ESGRecord, error) {
	logger := zerolog.Ctx(ctx)

	rows := []*repRiskRow{}
	if err := conn.Select(ctx, &rows, repRiskQuery, dateRange.StartTime(), dateRange.EndTime()); err != nil {
		return nil, err
	}

	unmatched := 0
	partial := 0
	records := make([]*data.ESGRecord, 0, len(rows))
	for _, row := range rows {
		rec := row.normalize()
		if rec.CUSIP8 == "" {
			unmatched++
		}
		if rec.NormalizeIncident() {
			partial++
		}
		records = append(records, rec)
	}

	logger.Debug().Int("NumRows", len(rows)).Int("Unmatched", unmatched).Int("PartialIncidents", partial).Msg("normalized reprisk rows")
	logger.Info().Int("NumRecords", len(records)).Str("DateRange", dateRange.String()).Msg("pulled reprisk metrics")

	return records, nil
}

func optionalDay(val *time.Time) *int32 {
	if val == nil {
		return nil
	}

	return data.Int32(data.DayFromTime(*val))
}

func (row *repRiskRow) normalize() *data.ESGRecord {
	rec := &data.ESGRecord{
		Date:                  data.DayFromTime(row.Date),
		RepRiskID:             row.RepRiskID,
		CompanyName:           row.CompanyName,
		PrimaryISIN:           row.PrimaryISIN,
		CurrentRRI:            row.CurrentRRI,
		TrendRRI:              row.TrendRRI,
		PeakRRI:               row.PeakRRI,
		PeakRRIDate:           optionalDay(row.PeakRRIDate),
		RepRiskRating:         row.RepRiskRating,
		CountrySectorAverage:  row.CountrySectorAverage,
		IncidentDate:          optionalDay(row.IncidentDate),
		StoryID:               row.StoryID,
		UnsharpIncident:       row.UnsharpIncident,
		RelatedCountries:      row.RelatedCountries,
		RelatedCountriesCodes: row.RelatedCountriesCodes,
		Severity:              row.Severity,
		Reach:                 row.Reach,
		Novelty:               row.Novelty,
		Environment:           row.Environment,
		Social:                row.Social,
		Governance:            row.Governance,
	}

	if row.PrimaryISIN != nil {
		if cusip8, ok := data.CUSIP8FromISIN(*row.PrimaryISIN); ok {
			rec.CUSIP8 = cusip8
		}
	}

	return rec
}
