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
package backblaze

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/kothar/go-backblaze"
	"github.com/penny-vault/pvesg/config"
	"github.com/penny-vault/pvesg/data"
	"github.com/rs/zerolog"
)

var (
	ErrBucketNotFound = errors.New("bucket not found")
	ErrNotConfigured  = errors.New("backblaze credentials are not configured")
)

// RunPrefix is the bucket directory that holds the artifacts of one run
func RunPrefix(dateRange data.DateRange, runID uuid.UUID) string {
	return slug.Make(fmt.Sprintf("esg lending %s %s", dateRange, runID.String()[:8]))
}

// ArtifactFiles lists the regular files directly inside each dir, sorted.
// Missing directories are skipped.
func ArtifactFiles(dirs ...string) ([]string, error) {
	files := make([]string, 0)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}

		for _, entry := range entries {
			if entry.Type().IsRegular() {
				files = append(files, filepath.Join(dir, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// Upload copies each file to the configured bucket under dirname
func Upload(ctx context.Context, settings config.Backblaze, dirname string, files []string) error {
	logger := zerolog.Ctx(ctx)

	if settings.ApplicationID == "" || settings.ApplicationKey == "" || settings.Bucket == "" {
		return ErrNotConfigured
	}

	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          settings.ApplicationID,
		ApplicationKey: settings.ApplicationKey,
	})
	if err != nil {
		logger.Error().Err(err).Str("BucketName", settings.Bucket).Msg("authorize backblaze failed")
		return err
	}

	bucket, err := b2.Bucket(settings.Bucket)
	if err != nil {
		logger.Error().Err(err).Str("BucketName", settings.Bucket).Msg("lookup bucket failed")
		return err
	}
	if bucket == nil {
		logger.Error().Str("BucketName", settings.Bucket).Msg("bucket does not exist")
		return ErrBucketNotFound
	}

	for _, fn := range files {
		if err := uploadFile(ctx, bucket, settings.Bucket, fn, dirname); err != nil {
			return err
		}
	}

	return nil
}

func uploadFile(ctx context.Context, bucket *backblaze.Bucket, bucketName, fn, dirname string) error {
	logger := zerolog.Ctx(ctx)

	reader, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer reader.Close()

	outName := fmt.Sprintf("%s/%s", dirname, filepath.Base(fn))
	metadata := make(map[string]string)

	file, err := bucket.UploadFile(outName, metadata, reader)
	if err != nil {
		logger.Error().Err(err).Str("FileName", outName).Str("BucketName", bucketName).Msg("save file to backblaze failed")
		return err
	}

	logger.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("uploaded file to backblaze")
	return nil
}
