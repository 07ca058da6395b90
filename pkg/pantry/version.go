// Package pantry holds build metadata shared by the pantry binaries.
package pantry

// Version is the pantry release. Release builds override it with
// -ldflags "-X github.com/mesh-intelligence/pantry/pkg/pantry.Version=...".
var Version = "v0.1.0-dev"
