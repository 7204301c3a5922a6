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
package cmd

import (
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/pipeline"
)

var _ = Describe("Run", func() {
	It("lists every stage with its row count", func() {
		start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		summary := &pipeline.RunSummary{
			RunID:     uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962"),
			StartTime: start,
			EndTime:   start.Add(90 * time.Second),
			Stages: []pipeline.StageResult{
				{Name: "crsp", NumRows: 1234567, Elapsed: 2 * time.Second},
				{Name: "stats", NumRows: 72, Elapsed: time.Second},
			},
		}

		out := renderRunSummary(summary)
		Expect(out).To(ContainSubstring("RUN COMPLETE"))
		Expect(out).To(ContainSubstring("3b241101-e2bb-4255-8caf-4136c566a962"))
		Expect(out).To(ContainSubstring("1 minute 30 seconds"))
		Expect(out).To(ContainSubstring("crsp: 1,234,567"))
		Expect(out).To(ContainSubstring("stats: 72"))
	})

	It("rejects malformed study dates", func() {
		Expect(validateDate("2024-01-31")).To(Succeed())
		Expect(validateDate("01/31/2024")).NotTo(Succeed())
	})
})
