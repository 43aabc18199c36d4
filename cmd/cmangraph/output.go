package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kylerisse/cmangraph/pkg/cman"
)

// writeText prints each graph as
//
//	[index] title
//	  opt: options
//	  def: body
func writeText(w io.Writer, graphs cman.Graphs) error {
	for _, g := range graphs.Sorted() {
		if _, err := fmt.Fprintf(w, "[%d] %s\n  opt: %s\n  def: %s\n", g.Index, g.Title, g.Options, g.Body); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, graphs cman.Graphs) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(graphs.Sorted())
}
