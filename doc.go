// Package main provides the go-copydylibs CLI, an Xcode build phase that
// bundles an app's dylib dependencies.
//
// For the library API, see the copydylibs subpackage:
//
//	import "github.com/aluedeke/go-copydylibs/pkg/copydylibs"
//
// # Installation
//
//	go install github.com/aluedeke/go-copydylibs@latest
//
// Then add a "Run Script" build phase after the frameworks are embedded:
//
//	"$HOME/go/bin/go-copydylibs"
package main
