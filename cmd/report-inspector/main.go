// Command report-inspector runs the table report operations against a single
// PDF from the command line.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := New().Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
