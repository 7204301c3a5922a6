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
package data_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/data"
)

var _ = Describe("Identifier", func() {
	DescribeTable("CUSIP8FromCUSIP9",
		func(input, expected string, ok bool) {
			cusip8, valid := data.CUSIP8FromCUSIP9(input)
			Expect(valid).To(Equal(ok))
			Expect(cusip8).To(Equal(expected))
		},
		Entry("apple", "037833100", "03783310", true),
		Entry("gamestop", "36467W109", "36467W10", true),
		Entry("lower case", "36467w109", "36467W10", true),
		Entry("already 8 characters", "03783310", "03783310", true),
		Entry("too short", "0378331", "", false),
		Entry("empty", "", "", false),
		Entry("punctuation", "0378-3100", "", false),
	)

	DescribeTable("CUSIP8FromISIN",
		func(input, expected string, ok bool) {
			cusip8, valid := data.CUSIP8FromISIN(input)
			Expect(valid).To(Equal(ok))
			Expect(cusip8).To(Equal(expected))
		},
		Entry("apple", "US0378331005", "03783310", true),
		Entry("gamestop", "US36467W1099", "36467W10", true),
		Entry("surrounding whitespace", " US0378331005 ", "03783310", true),
		Entry("truncated", "US03783", "", false),
		Entry("empty", "", "", false),
	)

	It("derives the same key from every source for one security", func() {
		fromCRSP, ok := data.CUSIP8FromCUSIP9("037833100")
		Expect(ok).To(BeTrue())
		fromRepRisk, ok := data.CUSIP8FromISIN("US0378331005")
		Expect(ok).To(BeTrue())
		fromMarkit, ok := data.MarkitCUSIP8(data.String("037833100"), nil)
		Expect(ok).To(BeTrue())

		Expect(fromCRSP).To(Equal(fromRepRisk))
		Expect(fromMarkit).To(Equal(fromCRSP))
	})

	Context("with a Markit record", func() {
		It("prefers the native cusip", func() {
			cusip8, ok := data.MarkitCUSIP8(data.String("037833100"), data.String("US36467W1099"))
			Expect(ok).To(BeTrue())
			Expect(cusip8).To(Equal("03783310"))
		})

		It("falls back to the isin when the cusip is missing", func() {
			cusip8, ok := data.MarkitCUSIP8(nil, data.String("US36467W1099"))
			Expect(ok).To(BeTrue())
			Expect(cusip8).To(Equal("36467W10"))
		})

		It("falls back to the isin when the cusip is malformed", func() {
			cusip8, ok := data.MarkitCUSIP8(data.String(""), data.String("US0378331005"))
			Expect(ok).To(BeTrue())
			Expect(cusip8).To(Equal("03783310"))
		})

		It("fails when both identifiers are missing", func() {
			_, ok := data.MarkitCUSIP8(nil, nil)
			Expect(ok).To(BeFalse())
		})
	})
})
