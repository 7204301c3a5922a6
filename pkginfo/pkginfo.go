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
package pkginfo

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
)

const Name = "pvesg"

var (
	BuildDate  string
	CommitHash string
	Version    string
)

var ErrNoBuildInfo = errors.New("binary was built without module support")

// BuildVersionString returns a version info string suitable for printing on the command line
func BuildVersionString() string {
	osArch := runtime.GOOS + "/" + runtime.GOARCH
	goVersion := runtime.Version()

	versionString := fmt.Sprintf(`%s %s %s

Build Date: %s
Commit: %s
Built with: %s`, Name, Version, osArch, BuildDate, CommitHash, goVersion)

	return versionString
}

// UserAgent identifies the binary in outbound HTTP requests
func UserAgent() string {
	version := Version
	if version == "" {
		version = "dev"
	}

	return fmt.Sprintf("%s/%s", Name, version)
}

// GetDependencyList returns an array of all dependencies linked in with this program
// each string is of the form `package="version"`
func GetDependencyList() ([]string, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrNoBuildInfo
	}

	deps := make([]string, 0, len(buildInfo.Deps))
	for _, dep := range buildInfo.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}

	sort.Strings(deps)

	return deps, nil
}
