// Command fileinfo scans the original data file once and records its line
// count and header column count in a small JSON info file. Set-creation runs
// (cmd/createsets) read the info file instead of rescanning, which matters
// because the scan is a full pass over a potentially huge file and set
// creation is typically re-invoked many times against one source.
//
// An optional sqlite catalog (-cache) remembers results keyed by path, size
// and mtime, so even fileinfo itself can skip the scan when the source has
// not changed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"setsampler/internal/datainfo"
	"setsampler/internal/source"
)

func main() {
	var (
		srcPath   = flag.String("i", "", "path of the original data file (plain, .zip, .gz or .xz)")
		outPath   = flag.String("o", "", "path of the info file to write")
		delimiter = flag.String("d", ",", "field delimiter of the original file")
		encoding  = flag.String("encoding", "", "source character encoding (IANA name); empty means UTF-8")
		cachePath = flag.String("cache", "", "optional sqlite catalog of scan results")
		listPath  = flag.String("list", "", "print a previously written info file and exit")
	)
	flag.Parse()

	log.SetOutput(os.Stderr)

	if *listPath != "" {
		info, err := datainfo.ReadFile(*listPath)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("line count: %d\ncolumn count: %d\n", info.LineCount, info.ColumnCount)
		return
	}

	if *srcPath == "" || *outPath == "" {
		fatalf("both -i and -o are required")
	}

	ctx := context.Background()

	var cache *datainfo.Cache
	if *cachePath != "" {
		var err error
		cache, err = datainfo.OpenCache(ctx, *cachePath)
		if err != nil {
			fatalf("%v", err)
		}
		defer cache.Close()
	}

	st, err := os.Stat(*srcPath)
	if err != nil {
		fatalf("stat source: %v", err)
	}

	var (
		info datainfo.Info
		hit  bool
	)
	if cache != nil {
		info, hit, err = cache.Lookup(ctx, *srcPath, st.Size(), st.ModTime())
		if err != nil {
			fatalf("%v", err)
		}
	}

	if !hit {
		startedAt := time.Now()
		info, err = scanSource(ctx, *srcPath, *encoding, *delimiter)
		if err != nil {
			fatalf("%v", err)
		}
		log.Printf("scanned %s in %s", *srcPath, time.Since(startedAt).Truncate(time.Millisecond))

		if cache != nil {
			if err := cache.Store(ctx, *srcPath, st.Size(), st.ModTime(), info); err != nil {
				// A failed cache write costs a future rescan, nothing more.
				log.Printf("cache: %v", err)
			}
		}
	} else {
		log.Printf("using cached counts for %s", *srcPath)
	}

	if err := datainfo.WriteFile(*outPath, info); err != nil {
		fatalf("%v", err)
	}
	log.Printf("%s: %d lines, %d columns", *outPath, info.LineCount, info.ColumnCount)
}

func scanSource(ctx context.Context, path, encoding, delimiter string) (datainfo.Info, error) {
	rc, err := source.Open(path)
	if err != nil {
		return datainfo.Info{}, err
	}
	dec, err := source.Decode(rc, encoding)
	if err != nil {
		_ = rc.Close()
		return datainfo.Info{}, err
	}
	defer dec.Close()

	return datainfo.Count(ctx, dec, delimiter)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
