// Command csvpeek opens a CSV file, infers its schema, and prints the
// resulting CREATE TABLE statement plus a handful of sample rows. It is a
// demonstration harness, not a supported CLI surface.
//
// Grounded on kokes-smda's cmd/ingest/main.go (flag-parsed single-file
// entry point, os.Open/defer Close shape), with logging switched from
// cmd/ingest's stdlib log.Fatal to structured zerolog output the way
// other_examples' UNO-SOFT-dbcsv wires it for its own CSV tooling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streamrow/csvcore/src/inference"
	"github.com/streamrow/csvcore/src/reader"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("csvpeek failed")
	}
}

func run() error {
	sampleRows := flag.Int64("sample-rows", 1000, "rows to read when inferring the schema; 0 reads to EOF")
	showRows := flag.Int("show", 5, "number of sample rows to print after inference")
	table := flag.String("table", "imported", "table name used in the generated CREATE TABLE statement")
	schemaName := flag.String("schema", "dbo", "schema name used in the generated CREATE TABLE statement")
	flag.Parse()

	path := flag.Arg(0)
	if path == "" {
		return errors.New("csvpeek: need to supply a file to inspect")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	opts := reader.DefaultOptions()
	opts.AutoDetectCompression = true
	r, err := reader.New(f, opts)
	if err != nil {
		return fmt.Errorf("csvpeek: opening reader: %w", err)
	}
	defer r.Close()

	log.Info().Str("file", path).Int64("size", info.Size()).Msg("inferring schema")

	result, err := inference.Infer(context.Background(), r, inference.Options{
		MaxRows:    *sampleRows,
		TotalBytes: info.Size(),
		Progress: func(rows, bytesRead int64, fraction float64) {
			log.Debug().Int64("rows", rows).Float64("fraction", fraction).Msg("inference progress")
		},
	})
	if err != nil {
		return fmt.Errorf("csvpeek: %w", err)
	}

	fmt.Println(inference.GenerateCreateTableStatement(result, *schemaName, *table))

	return printSampleRows(path, result, *showRows)
}

// printSampleRows re-opens the file for a second, typed pass using the
// inferred column types, since the first pass already consumed the
// sampled rows off the reader used for inference.
func printSampleRows(path string, result inference.Result, limit int) error {
	if limit <= 0 {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := reader.DefaultOptions()
	opts.AutoDetectCompression = true
	opts.ColumnTypes = inference.ToColumnTypes(result)
	r, err := reader.New(f, opts)
	if err != nil {
		return fmt.Errorf("csvpeek: reopening for sample rows: %w", err)
	}
	defer r.Close()

	for i := 0; i < limit; i++ {
		ok, err := r.Read()
		if err != nil {
			return fmt.Errorf("csvpeek: reading sample row: %w", err)
		}
		if !ok {
			break
		}
		rec := r.Current()
		row := make([]string, len(rec.Values))
		for j, v := range rec.Values {
			if v.IsNull() {
				row[j] = "<null>"
				continue
			}
			row[j] = fmt.Sprintf("%v", v.Raw)
		}
		fmt.Println(row)
	}
	return nil
}
