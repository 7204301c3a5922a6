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

// LendingRecord is a daily securities lending observation from Markit
type LendingRecord struct {
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
}

func (lending *LendingRecord) Key() Key {
	return Key{CUSIP8: lending.CUSIP8, Date: lending.Date}
}

func (lending *LendingRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("CUSIP8", lending.CUSIP8)
	e.Str("Date", FormatDay(lending.Date))
	if lending.ISIN != nil {
		e.Str("ISIN", *lending.ISIN)
	}
}
