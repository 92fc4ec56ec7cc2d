// Package copydylibs copies the dynamic libraries an executable depends on
// into its app bundle and rewrites their install names.
//
// It is meant to run as an Xcode build phase. Dependencies that live in
// /usr/local or /opt/local are copied into the bundle's frameworks
// directory, every reference to them is changed to @rpath/<name>, and the
// copied files are signed when $CODE_SIGN_IDENTITY is set.
//
// # Basic Usage
//
//	cfg, err := copydylibs.ConfigFromEnv(os.LookupEnv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := copydylibs.Bundle(copydylibs.Options{Config: cfg})
//
// # Tools
//
// Dependencies are listed with otool -L, install names are changed with
// install_name_tool and files are signed with codesign. A native lister
// built on go-macho can replace otool when it is not available.
package copydylibs
