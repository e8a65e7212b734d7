package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beetlebugorg/gml/pkg/gml"
	"github.com/golang/glog"
	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/encoding/wkt"
)

type cmdopts struct {
	Schema       string `long:"schema" description:"load the feature class list from this file instead of prescanning"`
	SaveSchema   bool   `long:"save-schema" description:"write a .gfs feature class list next to each document"`
	Class        string `long:"class" description:"only report features of this class"`
	Features     bool   `long:"features" description:"dump every feature"`
	Backend      string `long:"backend" choice:"stream" choice:"chunk" default:"chunk" description:"tokenizer delivery style"`
	NoInvertAxis bool   `long:"no-invert-axis" description:"keep lat/long order for geographic SRS"`
	AllAttrs     bool   `long:"all-attributes" description:"report every XML attribute as a property"`
	Workers      int    `long:"workers" description:"number of documents scanned in parallel (default: CPU count)"`
	Verbose      int    `short:"v" long:"verbose" description:"log verbosity"`
}

func main() {
	os.Exit(_main())
}

func showUsage() {
	fmt.Printf(`Usage : gmlinfo [options] FILE|DIR ...
	Prescan GML documents and report their feature classes
	--schema FILE    : use a saved feature class list
	--save-schema    : save the feature class list of each document
	--class NAME     : restrict reading to one class
	--features       : dump features
	--backend NAME   : stream or chunk
	--no-invert-axis : keep lat/long axis order
	--all-attributes : report XML attributes as properties
	--workers N      : parallel scanners
	-v N             : log verbosity
`)
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil || len(args) == 0 {
		showUsage()
		return 1
	}
	setupLogging(opts.Verbose)
	defer glog.Flush()

	paths, err := expandArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	readOpts := gml.DefaultOptions()
	if opts.Backend == "stream" {
		readOpts.Backend = gml.BackendStream
	}
	readOpts.InvertAxisOrderIfLatLong = !opts.NoInvertAxis
	readOpts.ReportAllAttributes = opts.AllAttrs

	if opts.Schema != "" || opts.Features || opts.Class != "" {
		status := 0
		for _, path := range paths {
			if err := inspect(os.Stdout, path, opts, readOpts); err != nil {
				fmt.Fprintf(os.Stderr, "%s\n", err)
				status = 1
			}
		}
		return status
	}

	scanOpts := gml.DefaultScanOptions()
	scanOpts.Parallel = len(paths) > 1
	if opts.Workers > 0 {
		scanOpts.Workers = opts.Workers
	}
	scanOpts.ErrorLog = os.Stderr
	scanOpts.Read = readOpts
	scanOpts.SaveSchemas = opts.SaveSchema

	summaries, errs := gml.ScanFiles(paths, scanOpts)
	for _, s := range summaries {
		printSummary(os.Stdout, s.Path, s.Summary)
	}
	if len(errs) > 0 {
		return 1
	}
	return 0
}

// setupLogging routes glog to stderr at the requested verbosity.
func setupLogging(verbose int) {
	flag.Set("logtostderr", "true")
	flag.Set("v", strconv.Itoa(verbose))
	flag.CommandLine.Parse(nil)
}

func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := gml.FindDocuments(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

func inspect(w io.Writer, path string, opts cmdopts, readOpts gml.Options) error {
	readOpts.SchemaPath = opts.Schema
	readOpts.ClassFilter = opts.Class
	r, err := gml.Open(path, readOpts)
	if err != nil {
		return err
	}
	defer r.Close()

	if opts.Schema == "" {
		if err := r.Prescan(gml.DefaultPrescanOptions()); err != nil {
			return err
		}
	}
	if opts.SaveSchema {
		if err := r.SaveSchema(gml.SchemaPath(path)); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "%s\n", path)
	printDocument(w, r.Summary())
	for _, c := range r.Classes() {
		if opts.Class != "" && !strings.EqualFold(c.Name, opts.Class) {
			continue
		}
		printClass(w, c)
	}

	if !opts.Features {
		return nil
	}
	for {
		f, err := r.NextFeature()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		printFeature(w, f)
	}
}

func printDocument(w io.Writer, s gml.Summary) {
	if s.GlobalSRSName != "" {
		fmt.Fprintf(w, "  global SRS: %s\n", s.GlobalSRSName)
	}
	fmt.Fprintf(w, "  sequential layers: %v\n", s.SequentialLayers)
}

func printSummary(w io.Writer, path string, s gml.Summary) {
	fmt.Fprintf(w, "%s\n", path)
	printDocument(w, s)
	for _, c := range s.Classes {
		fmt.Fprintf(w, "  %s: %s, %s", c.Name, countString(c.FeatureCount), c.GeometryType)
		if c.SRSName != "" {
			fmt.Fprintf(w, ", SRS %s", c.SRSName)
		}
		fmt.Fprintln(w)
		if c.HasExtent {
			fmt.Fprintf(w, "    extent: (%g, %g) - (%g, %g)\n", c.Extent.MinX, c.Extent.MinY, c.Extent.MaxX, c.Extent.MaxY)
		}
	}
	if total, ok := s.Extent(); ok {
		fmt.Fprintf(w, "  total: %d features, extent (%g, %g) - (%g, %g)\n",
			s.FeatureCount(), total.MinX, total.MinY, total.MaxX, total.MaxY)
	}
}

func printClass(w io.Writer, c gml.Class) {
	fmt.Fprintf(w, "  %s (element %s): %s, %s", c.Name, c.ElementPath, countString(c.FeatureCount), c.GeometryType())
	if c.SRSName != "" {
		fmt.Fprintf(w, ", SRS %s", c.SRSName)
	}
	fmt.Fprintln(w)
	if c.HasExtent {
		fmt.Fprintf(w, "    extent: (%g, %g) - (%g, %g)\n", c.Extent.Min[0], c.Extent.Min[1], c.Extent.Max[0], c.Extent.Max[1])
	}
	for _, g := range c.Geometries {
		fmt.Fprintf(w, "    geometry %s [%s]: %s\n", g.Name, g.ElementPath, g.Type)
	}
	for _, p := range c.Properties {
		fmt.Fprintf(w, "    %s [%s]: %s", p.Name, p.ElementPath, p.Type)
		if p.Width > 0 {
			fmt.Fprintf(w, "(%d)", p.Width)
		}
		fmt.Fprintln(w)
	}
}

func printFeature(w io.Writer, f *gml.Feature) {
	fmt.Fprintf(w, "%s %s\n", f.Class(), f.FID())
	for _, p := range f.Properties() {
		if p.IsNull() {
			continue
		}
		fmt.Fprintf(w, "  %s = %s\n", p.Name, strings.Join(p.Values, ", "))
	}
	switch {
	case f.HasGeometry():
		fmt.Fprintf(w, "  geometry = %s\n", wkt.MarshalString(f.Geometry()))
	case f.GeometryError() != nil:
		fmt.Fprintf(w, "  geometry error: %v\n", f.GeometryError())
	}
}

func countString(n int64) string {
	if n < 0 {
		return "unknown feature count"
	}
	if n == 1 {
		return "1 feature"
	}
	return fmt.Sprintf("%d features", n)
}
