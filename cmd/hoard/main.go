// Command hoard manages typed tables and enums stored in a vault's SQLite
// blob.
package main

import (
	"os"

	"github.com/mesh-intelligence/hoard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
