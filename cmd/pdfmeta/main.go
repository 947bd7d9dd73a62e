// Command pdfmeta prints the trailer metadata of local archive PDFs as JSON
// lines, one per file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"ads-harvest/pkg/content"
	"ads-harvest/pkg/logger"
	"ads-harvest/pkg/trailer"
)

type result struct {
	File     string             `json:"file"`
	Pages    int                `json:"seiten,omitempty"`
	Metadata map[string]*string `json:"metadata,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func main() {
	var (
		skip   = flag.Int("skip", trailer.DefaultLayout().SkipLines, "Leading lines of the last page to ignore")
		offset = flag.Int("offset", trailer.DefaultLayout().ValueOffset, "Distance from a label line to its value line")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file.pdf...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.Named("pdfmeta")

	layout := trailer.DefaultLayout()
	layout.SkipLines = *skip
	layout.ValueOffset = *offset

	failed := extractAll(os.Stdout, content.NewPDFReader(), trailer.NewWithLayout(layout), flag.Args())
	if failed > 0 {
		log.Error().Int("failed", failed).Int("files", flag.NArg()).Msg("Some files could not be read")
		os.Exit(1)
	}
}

// extractAll writes one result line per path and returns the number of
// files that failed. A file whose result line could not be written counts
// as failed.
func extractAll(w io.Writer, r content.Reader, ex trailer.Extractor, paths []string) int {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	failed := 0
	for _, path := range paths {
		res := result{File: path}
		pages, lines, err := r.LastPage(path)
		if err != nil {
			res.Error = err.Error()
		} else {
			md := ex.Extract(pages, lines)
			res.Pages = md.Pages
			res.Metadata = md.Fields
		}
		if werr := enc.Encode(res); werr != nil || err != nil {
			failed++
		}
	}
	return failed
}
