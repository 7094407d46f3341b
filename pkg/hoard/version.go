// Package hoard holds build metadata for the hoard binary.
package hoard

// Version is the release version. Builds override it with
// -ldflags "-X github.com/mesh-intelligence/hoard/pkg/hoard.Version=...".
var Version = "0.1.0"

// ModulePath is the Go module path of this repository.
const ModulePath = "github.com/mesh-intelligence/hoard"
