package gml

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ScanOptions controls how ScanFiles prescans documents.
type ScanOptions struct {
	// Parallel enables concurrent scanning.
	Parallel bool

	// Workers is the number of scanning goroutines. If 0, defaults to
	// runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// SkipErrors continues scanning when a document fails. Failed documents
	// are left out of the result and their errors collected. When false,
	// the first error stops scanning.
	SkipErrors bool

	// Progress is called after each document, with the number of documents
	// processed so far.
	Progress func(scanned, total int)

	// ErrorLog receives one line per failed document.
	ErrorLog io.Writer

	// Read configures the reader of each document.
	Read Options

	// Prescan configures the prescan of each document.
	Prescan PrescanOptions

	// SaveSchemas writes a feature class list next to each scanned
	// document, replacing its extension with .gfs.
	SaveSchemas bool
}

// DefaultScanOptions returns scan options with sensible defaults.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Read:       DefaultOptions(),
		Prescan:    DefaultPrescanOptions(),
	}
}

// FileSummary is the prescan result of one document.
type FileSummary struct {
	Path    string
	Summary Summary
}

// ScanFiles prescans documents, in parallel when asked, and returns their
// summaries in input order.
//
// Example:
//
//	summaries, errs := gml.ScanFiles(paths, gml.ScanOptions{
//	    Parallel:   true,
//	    SkipErrors: true,
//	    Read:       gml.DefaultOptions(),
//	    Prescan:    gml.DefaultPrescanOptions(),
//	    Progress: func(scanned, total int) {
//	        fmt.Printf("\rScanning: %d/%d", scanned, total)
//	    },
//	})
func ScanFiles(paths []string, opts ScanOptions) ([]FileSummary, []error) {
	if len(paths) == 0 {
		return []FileSummary{}, nil
	}
	if !opts.Parallel {
		return scanFilesSerial(paths, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type scanResult struct {
		index   int
		summary Summary
		err     error
	}

	jobs := make(chan int, len(paths))
	results := make(chan scanResult, len(paths))
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				select {
				case <-done:
					continue
				default:
				}
				s, err := ScanFile(paths[index], opts)
				results <- scanResult{index: index, summary: s, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	summaries := make(map[int]Summary)
	var errs []error
	scanned := 0
	stopped := false

	for result := range results {
		if stopped {
			continue
		}
		scanned++
		if opts.Progress != nil {
			opts.Progress(scanned, len(paths))
		}

		if result.err != nil {
			err := scanError(paths[result.index], result.err, opts)
			if !opts.SkipErrors {
				close(done)
				stopped = true
				errs = []error{err}
				continue
			}
			errs = append(errs, err)
			continue
		}
		summaries[result.index] = result.summary
	}
	if stopped {
		return nil, errs
	}

	out := make([]FileSummary, 0, len(summaries))
	for i := range paths {
		if s, ok := summaries[i]; ok {
			out = append(out, FileSummary{Path: paths[i], Summary: s})
		}
	}
	return out, errs
}

// scanFilesSerial scans documents one at a time (Parallel=false).
func scanFilesSerial(paths []string, opts ScanOptions) ([]FileSummary, []error) {
	out := make([]FileSummary, 0, len(paths))
	var errs []error

	for i, path := range paths {
		s, err := ScanFile(path, opts)
		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
		if err != nil {
			err = scanError(path, err, opts)
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		out = append(out, FileSummary{Path: path, Summary: s})
	}
	return out, errs
}

func scanError(path string, err error, opts ScanOptions) error {
	err = errors.Wrap(err, path)
	glog.Warningf("scanning GML: %v", err)
	if opts.ErrorLog != nil {
		fmt.Fprintf(opts.ErrorLog, "Error scanning document: %v\n", err)
	}
	return err
}

// ScanFile prescans one document and returns its summary.
func ScanFile(path string, opts ScanOptions) (Summary, error) {
	r, err := Open(path, opts.Read)
	if err != nil {
		return Summary{}, err
	}
	defer r.Close()

	if err := r.Prescan(opts.Prescan); err != nil {
		return Summary{}, err
	}
	if opts.SaveSchemas {
		if err := r.SaveSchema(SchemaPath(path)); err != nil {
			return Summary{}, err
		}
	}
	return r.Summary(), nil
}

// SchemaPath returns the feature class list path conventionally paired with
// a document.
func SchemaPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".gfs"
}

// FindDocuments returns the .gml and .xml files below root, in lexical
// order.
func FindDocuments(root string) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".gml", ".xml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk directory")
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no GML documents found in %s", root)
	}
	return paths, nil
}
