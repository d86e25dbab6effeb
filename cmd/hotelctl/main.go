// Command hotelctl runs curated hotel searches from the terminal.
package main

import (
	"context"
	"os"

	"hotel-curator/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
