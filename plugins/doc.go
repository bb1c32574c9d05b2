// Package plugins implements the protoc side of a code generator: decoding
// the CodeGeneratorRequest, linking its descriptors, and assembling the
// CodeGeneratorResponse.
//
// # Interface for Protoc Plugins
//
// A protoc plugin need only provide a function whose signature matches the
// Plugin type and then wire it up in a main method like so:
//
//	func main() {
//	    plugins.PluginMain("protoc-gen-foo", doCodeGen)
//	}
//
//	func doCodeGen(req  *plugins.CodeGenRequest,
//	               resp *plugins.CodeGenResponse) error {
//	    // ...
//	    // Process req, generate code to resp
//	    // ...
//	}
//
// Output is collected in memory and returned to protoc only when the plugin
// function succeeds. Files appear in the response in the order they were
// first written.
package plugins
