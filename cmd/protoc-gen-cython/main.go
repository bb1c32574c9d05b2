// Command protoc-gen-cython is a protoc plugin that generates Cython bindings
// for the C++ code protoc generates, plus a thin pure-Python layer on top.
//
// # Protoc Arguments
//
// Parameters are given before the output location, separated by commas or
// whitespace:
//
//	protoc --cpp_out=. --cython_out=prefix=gen,manifest:. test.proto
//
// The allowed parameters are:
//  1. "prefix=<module>": A dotted module path all generated modules are
//     placed under. The argparse-style "--prefix <module>" is also accepted.
//  2. "config=<filename>": A YAML file with defaults for the other
//     parameters.
//  3. "log_level=<level>": The level of diagnostics written to stderr.
//     Defaults to "warning".
//  4. "manifest[=<bool>]": Also write cytobuf_manifest.json, describing the
//     emitted files.
//  5. "reserved=<list>": A pipe-delimited list of extra names that may not be
//     used for generated types and fields.
//  6. "serial[=<bool>]": Build the representation of each file one at a time.
//
// # Config File
//
// The config file must be a YAML file. Its format is as follows:
//
//	prefix: gen
//	log_level: info
//	manifest: true
//	reserved_names: ["copy", "self"]
//	serial: false
//
// # Offline Use
//
// Run with the "generate" command, the program reads serialized
// FileDescriptorSets, as written by protoc's --descriptor_set_out with
// --include_imports, and writes the generated files to a directory. Several
// sets may be given, separated like entries of $PATH.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cytobuf/protoc-gen-cython/plugins"
)

const pluginName = "protoc-gen-cython"

// version is set at link time.
var version = "devel"

func main() {
	root := &cobra.Command{
		Use:   pluginName,
		Short: "Generate Cython bindings for protocol buffers",
		Long: "When run without arguments, " + pluginName + " acts as a protoc plugin,\n" +
			"reading a code generation request from stdin.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(*cobra.Command, []string) {
			plugins.PluginMain(pluginName, doCodeGen)
		},
	}
	root.AddCommand(newGenerateCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", pluginName, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pluginName, version)
		},
	}
}
