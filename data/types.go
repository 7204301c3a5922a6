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
	"math"
	"strconv"
)

// Key identifies a security on a single day across every source
type Key struct {
	CUSIP8 string
	Date   int32
}

func (key Key) String() string {
	return fmt.Sprintf("%s@%s", key.CUSIP8, FormatDay(key.Date))
}

type Indicator string

const (
	ShortInterestRatio   Indicator = "short interest ratio"
	LoanSupplyRatio      Indicator = "loan supply ratio"
	LoanUtilisationRatio Indicator = "loan utilisation ratio"
	LoanFee              Indicator = "loan fee"
)

// Indicators lists the lending indicators in report order
var Indicators = []Indicator{
	ShortInterestRatio,
	LoanSupplyRatio,
	LoanUtilisationRatio,
	LoanFee,
}

type Dimension string

const (
	Severity    Dimension = "severity"
	Novelty     Dimension = "novelty"
	Reach       Dimension = "reach"
	Environment Dimension = "environment"
	Social      Dimension = "social"
	Governance  Dimension = "governance"
)

// Dimensions lists the ESG dimensions statistics are conditioned on
var Dimensions = []Dimension{
	Severity,
	Novelty,
	Reach,
	Environment,
	Social,
	Governance,
}

// Horizons are the number of recorded observations ahead used for change
// statistics; zero is the contemporaneous level
var Horizons = []int{0, 5, 26}

// DimensionValue is the value of an ESG dimension on a single row. Rank orders
// group output and Label names the group.
type DimensionValue struct {
	Rank  float64
	Label string
}

func numericDimension(val *float64) (DimensionValue, bool) {
	if val == nil || math.IsNaN(*val) {
		return DimensionValue{}, false
	}

	return DimensionValue{
		Rank:  *val,
		Label: strconv.FormatFloat(*val, 'f', -1, 64),
	}, true
}

func flagDimension(val *bool) (DimensionValue, bool) {
	if val == nil {
		return DimensionValue{}, false
	}

	if *val {
		return DimensionValue{Rank: 1, Label: "true"}, true
	}

	return DimensionValue{Rank: 0, Label: "false"}, true
}

func ratio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}

	val := *numerator / *denominator
	return &val
}

func copyFloat(val *float64) *float64 {
	if val == nil {
		return nil
	}

	out := *val
	return &out
}

// Float returns a pointer to val; used when building records by hand
func Float(val float64) *float64 {
	return &val
}

// String returns a pointer to val
func String(val string) *string {
	return &val
}

// Bool returns a pointer to val
func Bool(val bool) *bool {
	return &val
}

func Int32(val int32) *int32 {
	return &val
}

func Int64(val int64) *int64 {
	return &val
}
