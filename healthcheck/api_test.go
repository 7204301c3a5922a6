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
package healthcheck_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvesg/healthcheck"
)

type ping struct {
	path  string
	runID string
	body  string
}

var _ = Describe("Check", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		mu     sync.Mutex
		pings  []ping
		status int
		runID  uuid.UUID
	)

	BeforeEach(func() {
		ctx = context.Background()
		pings = nil
		status = http.StatusOK
		runID = uuid.New()

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			pings = append(pings, ping{path: r.URL.Path, runID: r.URL.Query().Get("rid"), body: string(body)})
			mu.Unlock()
			w.WriteHeader(status)
		}))
		DeferCleanup(server.Close)
	})

	It("pings start, success and failure endpoints with the run id", func() {
		check := healthcheck.New(server.URL+"/ping/abc/", runID)
		Expect(check.Start(ctx)).To(Succeed())
		Expect(check.Success(ctx, "72 units")).To(Succeed())
		Expect(check.Fail(ctx, errors.New("query canceled"))).To(Succeed())

		Expect(pings).To(Equal([]ping{
			{path: "/ping/abc/start", runID: runID.String()},
			{path: "/ping/abc", runID: runID.String(), body: "72 units"},
			{path: "/ping/abc/fail", runID: runID.String(), body: "query canceled"},
		}))
	})

	It("reports an unexpected status", func() {
		status = http.StatusNotFound
		err := healthcheck.New(server.URL, runID).Start(ctx)
		Expect(err).To(MatchError(healthcheck.ErrStatus))
	})

	It("does nothing without a ping url", func() {
		check := healthcheck.New("", runID)
		Expect(check.Enabled()).To(BeFalse())
		Expect(check.Start(ctx)).To(Succeed())
		Expect(pings).To(BeEmpty())
	})
})
