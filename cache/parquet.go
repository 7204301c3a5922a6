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
package cache

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

const parallelism = 4

// WriteParquet saves rows to fn. The file is written next to its destination
// and renamed into place once complete so readers never observe a partial
// artifact.
func WriteParquet[T any](ctx context.Context, fn string, rows []*T) error {
	logger := zerolog.Ctx(ctx)
	tmpFn := fn + ".tmp"

	fh, err := local.NewLocalFileWriter(tmpFn)
	if err != nil {
		logger.Error().Err(err).Str("FileName", tmpFn).Msg("cannot create local file")
		return err
	}

	pw, err := writer.NewParquetWriter(fh, new(T), parallelism)
	if err != nil {
		fh.Close()
		logger.Error().Err(err).Str("FileName", fn).Msg("parquet writer creation failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	for _, row := range rows {
		if err = pw.Write(*row); err != nil {
			fh.Close()
			logger.Error().Err(err).Str("FileName", fn).Msg("parquet write failed for record")
			return fmt.Errorf("write %s: %w", fn, err)
		}
	}

	if err = pw.WriteStop(); err != nil {
		fh.Close()
		logger.Error().Err(err).Str("FileName", fn).Msg("parquet write failed")
		return err
	}

	if err = fh.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmpFn, fn); err != nil {
		return err
	}

	logger.Debug().Str("FileName", fn).Int("NumRecords", len(rows)).Msg("parquet write finished")
	return nil
}

// ReadParquet loads every row stored in fn
func ReadParquet[T any](ctx context.Context, fn string) ([]*T, error) {
	logger := zerolog.Ctx(ctx)

	fh, err := local.NewLocalFileReader(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	pr, err := reader.NewParquetReader(fh, new(T), parallelism)
	if err != nil {
		logger.Error().Err(err).Str("FileName", fn).Msg("parquet reader creation failed")
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]T, num)
	if num > 0 {
		if err := pr.Read(&rows); err != nil {
			logger.Error().Err(err).Str("FileName", fn).Msg("parquet read failed")
			return nil, fmt.Errorf("read %s: %w", fn, err)
		}
	}

	out := make([]*T, len(rows))
	for idx := range rows {
		out[idx] = &rows[idx]
	}

	logger.Debug().Str("FileName", fn).Int("NumRecords", num).Msg("parquet read finished")
	return out, nil
}
