// Command fntrace inspects function definitions and recorded fnevents traces.
//
//	fntrace catalog functions.yaml --version 1.4.0
//	fntrace check functions.yaml
//	fntrace sessions --db trace.db
//	fntrace decode --db trace.db --session <id>
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fntrace:", err)
		os.Exit(exitCode(err))
	}
}
