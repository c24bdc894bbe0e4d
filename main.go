// Edsview is a terminal reader for Edge Delivery Services sites. It fetches
// the plain-HTML rendition of each page and lays it out as text.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
