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
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/penny-vault/pvesg/pkginfo"
)

var (
	ErrStatus = errors.New("status code is invalid")
)

// Check reports the progress of a pipeline run to a healthchecks.io ping
// URL. A check with an empty PingURL does nothing.
type Check struct {
	PingURL string
	RunID   uuid.UUID

	client *resty.Client
}

func New(pingURL string, runID uuid.UUID) *Check {
	return &Check{
		PingURL: strings.TrimRight(pingURL, "/"),
		RunID:   runID,
		client:  resty.New().SetTimeout(10 * time.Second).SetHeader("User-Agent", pkginfo.UserAgent()),
	}
}

// Enabled reports whether a ping URL is configured
func (check *Check) Enabled() bool {
	return check.PingURL != ""
}

// Start signals that a run has begun
func (check *Check) Start(ctx context.Context) error {
	return check.ping(ctx, "/start", "")
}

// Success signals that a run finished; body is attached to the ping
func (check *Check) Success(ctx context.Context, body string) error {
	return check.ping(ctx, "", body)
}

// Fail signals that a run failed with runErr
func (check *Check) Fail(ctx context.Context, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}

	return check.ping(ctx, "/fail", msg)
}

func (check *Check) ping(ctx context.Context, suffix, body string) error {
	if !check.Enabled() {
		return nil
	}

	resp, err := check.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain").
		SetQueryParam("rid", check.RunID.String()).
		SetBody(body).
		Post(check.PingURL + suffix)

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
