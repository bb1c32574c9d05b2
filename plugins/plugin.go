package plugins

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

// Plugin is a code generator that generates code during protoc invocations.
type Plugin func(*CodeGenRequest, *CodeGenResponse) error

// CodeGenRequest represents the arguments to protoc that describe what code
// protoc has been requested to generate.
type CodeGenRequest struct {
	// Args are the parameters for the plugin.
	Args []string
	// Files are the proto source files for which code should be generated.
	Files []*desc.FileDescriptor
	// The version of protoc that has invoked the plugin.
	ProtocVersion ProtocVersion
}

// FileNames returns the names of the files for which code should be
// generated, in request order.
func (req *CodeGenRequest) FileNames() []string {
	names := make([]string, len(req.Files))
	for i, fd := range req.Files {
		names[i] = fd.GetName()
	}
	return names
}

// AllFiles returns the descriptor protos of the requested files and of
// everything they import, transitively. Every file appears once and after
// all of its dependencies.
func (req *CodeGenRequest) AllFiles() []*descriptorpb.FileDescriptorProto {
	var files []*descriptorpb.FileDescriptorProto
	addRecursive(req.Files, &files, map[string]struct{}{})
	return files
}

// CodeGenResponse is how the plugin transmits generated code to protoc.
type CodeGenResponse struct {
	pluginName string
	output     *outputMap
	features   uint64
}

type outputMap struct {
	mu    sync.Mutex
	files map[string]*bytes.Buffer
	// names of files, in the order they were opened
	order []string
}

func (m *outputMap) open(pluginName, name string) (*bytes.Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[name]; ok {
		return nil, fmt.Errorf("file %s already opened for writing by plugin %s", name, pluginName)
	}
	if m.files == nil {
		m.files = map[string]*bytes.Buffer{}
	}
	buf := &bytes.Buffer{}
	m.files[name] = buf
	m.order = append(m.order, name)
	return buf, nil
}

// OutputFile returns a writer for creating the file with the given name.
// Files appear in the response in the order they are opened. Each name may
// be opened only once.
func (resp *CodeGenResponse) OutputFile(name string) (io.Writer, error) {
	return resp.output.open(resp.pluginName, name)
}

// SupportsProto3Optional tells protoc the plugin understands proto3 optional
// fields.
func (resp *CodeGenResponse) SupportsProto3Optional() {
	resp.features |= uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)
}

// ProtocVersion represents a version of the protoc tool.
type ProtocVersion struct {
	Major, Minor, Patch int
	Suffix              string
}

func (v ProtocVersion) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Suffix != "" {
		if v.Suffix[0] != '-' {
			buf.WriteRune('-')
		}
		buf.WriteString(v.Suffix)
	}
	return buf.String()
}

// NewCodeGenResponse creates a new, empty response for the named plugin.
func NewCodeGenResponse(pluginName string) *CodeGenResponse {
	return &CodeGenResponse{
		pluginName: pluginName,
		output:     &outputMap{},
	}
}
