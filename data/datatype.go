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
	"fmt"
	"strings"
)

// Stage is a step of the pipeline whose output is persisted as an artifact
type Stage struct {
	Name        string
	Description string
	DependsOn   []string
}

const (
	CRSPKey             = "crsp"
	MarkitKey           = "markit"
	RepRiskKey          = "reprisk"
	MarkitCRSPRatiosKey = "markit_crsp_ratios"
	MergedDataKey       = "merged_data"
)

var Stages = map[string]*Stage{
	CRSPKey: {
		Name:        CRSPKey,
		Description: "Daily shares outstanding from CRSP, forward-filled per security",
	},
	MarkitKey: {
		Name:        MarkitKey,
		Description: "Daily securities lending analytics from Markit",
	},
	RepRiskKey: {
		Name:        RepRiskKey,
		Description: "Daily RepRisk risk indices and incidents",
	},
	MarkitCRSPRatiosKey: {
		Name:        MarkitCRSPRatiosKey,
		Description: "Markit left-joined with CRSP plus the lending indicators",
		DependsOn:   []string{MarkitKey, CRSPKey},
	},
	MergedDataKey: {
		Name:        MergedDataKey,
		Description: "Lending panel left-joined with RepRisk",
		DependsOn:   []string{MarkitCRSPRatiosKey, RepRiskKey},
	},
}

// PulledStages lists the stages persisted under the data directory in
// execution order
var PulledStages = []string{CRSPKey, MarkitKey, RepRiskKey, MarkitCRSPRatiosKey, MergedDataKey}

// StatsUnit identifies one descriptive statistics artifact
type StatsUnit struct {
	Indicator Indicator
	Dimension Dimension
	Horizon   int
}

// Name is the artifact name: {indicator}_{dimension}[_change_{horizon}]
func (unit StatsUnit) Name() string {
	name := fmt.Sprintf("%s_%s", unit.Indicator, unit.Dimension)
	if unit.Horizon != 0 {
		name = fmt.Sprintf("%s_change_%d", name, unit.Horizon)
	}

	return name
}

// TableName escapes the spaces of the artifact name for rendered tables
func (unit StatsUnit) TableName() string {
	return strings.ReplaceAll(unit.Name(), " ", "_")
}

// StatsUnits enumerates every dimension, indicator and horizon combination
func StatsUnits() []StatsUnit {
	units := make([]StatsUnit, 0, len(Dimensions)*len(Indicators)*len(Horizons))
	for _, horizon := range Horizons {
		for _, dimension := range Dimensions {
			for _, indicator := range Indicators {
				units = append(units, StatsUnit{
					Indicator: indicator,
					Dimension: dimension,
					Horizon:   horizon,
				})
			}
		}
	}

	return units
}
