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
	"strings"
)

const (
	cusip8Len = 8

	// an ISIN is a 2-letter country prefix followed by the 9-character
	// CUSIP and a check digit
	isinCountryLen = 2
)

func isAlphanumeric(val string) bool {
	for _, ch := range val {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'A' && ch <= 'Z':
		default:
			return false
		}
	}

	return true
}

// NormalizeCUSIP reduces a 8 or 9 character CUSIP to its CUSIP8 form
func NormalizeCUSIP(cusip string) (string, bool) {
	cusip = strings.ToUpper(strings.TrimSpace(cusip))
	if len(cusip) < cusip8Len {
		return "", false
	}

	cusip = cusip[:cusip8Len]
	if !isAlphanumeric(cusip) {
		return "", false
	}

	return cusip, true
}

// CUSIP8FromCUSIP9 drops the check digit of a 9-character CUSIP
func CUSIP8FromCUSIP9(cusip9 string) (string, bool) {
	return NormalizeCUSIP(cusip9)
}

// CUSIP8FromISIN skips the country prefix of an ISIN and returns the first
// eight characters of the embedded CUSIP
func CUSIP8FromISIN(isin string) (string, bool) {
	isin = strings.ToUpper(strings.TrimSpace(isin))
	if len(isin) < isinCountryLen+cusip8Len {
		return "", false
	}

	return NormalizeCUSIP(isin[isinCountryLen:])
}

// MarkitCUSIP8 prefers the native Markit CUSIP and falls back to the ISIN
func MarkitCUSIP8(cusip, isin *string) (string, bool) {
	if cusip != nil {
		if cusip8, ok := NormalizeCUSIP(*cusip); ok {
			return cusip8, true
		}
	}

	if isin != nil {
		return CUSIP8FromISIN(*isin)
	}

	return "", false
}
