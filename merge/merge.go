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
package merge

import (
	"context"

	"github.com/penny-vault/pvesg/data"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// MarkitCRSP left joins the lending records with shares outstanding on
// (CUSIP8, date) and derives the lending indicators. Every Markit row is
// kept in input order; rows without a CRSP match have missing share
// based ratios. When CRSP reports a key more than once the last row wins.
func MarkitCRSP(ctx context.Context, markit []*data.LendingRecord, crsp []*data.SharesOutstanding) []*data.PanelRecord {
	sharesByKey := lo.KeyBy(crsp, func(shares *data.SharesOutstanding) data.Key {
		return shares.Key()
	})

	matched := 0
	panel := lo.Map(markit, func(lending *data.LendingRecord, _ int) *data.PanelRecord {
		row := data.NewPanelRecord(lending)
		shares, ok := sharesByKey[row.Key()]
		if ok {
			matched++
		}

		row.SetShares(shares)
		return row
	})

	zerolog.Ctx(ctx).Debug().Int("NumRows", len(panel)).Int("Matched", matched).
		Int("Unmatched", len(panel)-matched).Msg("merged markit with crsp")

	return panel
}

// WithRepRisk left joins the lending panel with RepRisk on (CUSIP8, date).
// The input panel is not modified. RepRisk rows without a CUSIP never
// match. When a company has several rows on one day the first row that
// carries an incident is used, otherwise the first row.
func WithRepRisk(ctx context.Context, panel []*data.PanelRecord, reprisk []*data.ESGRecord) []*data.PanelRecord {
	esgByKey := make(map[data.Key]*data.ESGRecord, len(reprisk))
	for _, esg := range reprisk {
		if esg.CUSIP8 == "" {
			continue
		}

		key := esg.Key()
		current, ok := esgByKey[key]
		if !ok || (!current.HasIncident() && esg.HasIncident()) {
			esgByKey[key] = esg
		}
	}

	matched := 0
	incidents := 0
	merged := lo.Map(panel, func(row *data.PanelRecord, _ int) *data.PanelRecord {
		out := *row
		if esg, ok := esgByKey[out.Key()]; ok {
			matched++
			if esg.HasIncident() {
				incidents++
			}
			out.SetESG(esg)
		}

		return &out
	})

	zerolog.Ctx(ctx).Debug().Int("NumRows", len(merged)).Int("Matched", matched).
		Int("Incidents", incidents).Msg("merged lending panel with reprisk")

	return merged
}
