package plugins

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
)

func addRecursive(fds []*desc.FileDescriptor, files *[]*descriptorpb.FileDescriptorProto, seen map[string]struct{}) {
	for _, fd := range fds {
		if _, ok := seen[fd.GetName()]; ok {
			continue
		}
		seen[fd.GetName()] = struct{}{}
		addRecursive(fd.GetDependencies(), files, seen)
		*files = append(*files, fd.AsFileDescriptorProto())
	}
}

// PluginMain should be called from main functions of protoc plugins that are
// written in Go. This will handle invoking the given plugin function, handling
// any errors, writing the results to the process's stdout, and then exiting the
// process.
func PluginMain(name string, plugin Plugin) {
	output := os.Stdout

	// We need to be strict about what goes to stdout: only the plugin response.
	// So if any code accidentally tries to print to stdout, let's have it go to
	// stderr instead.
	os.Stdout = os.Stderr

	if err := RunPlugin(name, plugin, os.Stdin, output); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	// Success!
	os.Exit(0)
}

// RunPlugin runs the given plugin. Errors are reported using the given name.
// The protoc request is read from in and the plugin's results are written to
// out. Under most circumstances, this function will return nil, even if an
// error was encountered. That is because typically errors will be reported to
// out, by writing a code gen response that indicates the error. But if that
// fails, a non-nil error will be returned.
func RunPlugin(name string, plugin Plugin, in io.Reader, out io.Writer) error {
	name = pluginName(name)
	finish := func(respb *pluginpb.CodeGeneratorResponse) error {
		b, err := proto.Marshal(respb)
		if err != nil {
			// see if we can serialize an error response
			respb = errResponse(name, fmt.Errorf("failed to write code gen response: %v", err.Error()))
			if b, err = proto.Marshal(respb); err != nil {
				// still no? give up
				return err
			}
		}
		_, err = out.Write(b)
		return err
	}

	reqBytes, err := io.ReadAll(in)
	if err != nil {
		return finish(errResponse(name, fmt.Errorf("failed to read code gen request: %v", err)))
	}
	var reqpb pluginpb.CodeGeneratorRequest
	if err := proto.Unmarshal(reqBytes, &reqpb); err != nil {
		return finish(errResponse(name, fmt.Errorf("failed to read code gen request: %v", err)))
	}
	return finish(runPlugin(name, plugin, &reqpb))
}

func runPlugin(name string, plugin Plugin, reqpb *pluginpb.CodeGeneratorRequest) *pluginpb.CodeGeneratorResponse {
	var req CodeGenRequest

	files, err := LinkFiles(reqpb.ProtoFile, reqpb.FileToGenerate)
	if err != nil {
		return errResponse(name, err)
	}
	req.Files = files
	if reqpb.Parameter != nil {
		req.Args = strings.Split(*reqpb.Parameter, ",")
	}
	if reqpb.CompilerVersion != nil {
		req.ProtocVersion.Major = int(reqpb.CompilerVersion.GetMajor())
		req.ProtocVersion.Minor = int(reqpb.CompilerVersion.GetMinor())
		req.ProtocVersion.Patch = int(reqpb.CompilerVersion.GetPatch())
		req.ProtocVersion.Suffix = reqpb.CompilerVersion.GetSuffix()
	}

	resp := NewCodeGenResponse(name)

	if err := plugin(&req, resp); err != nil {
		return errResponse(name, err)
	}

	var respb pluginpb.CodeGeneratorResponse
	respb.SupportedFeatures = proto.Uint64(resp.features)
	resp.output.mu.Lock()
	defer resp.output.mu.Unlock()

	for _, f := range resp.output.order {
		respb.File = append(respb.File, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(f),
			Content: proto.String(resp.output.files[f].String()),
		})
	}

	return &respb
}

// LinkFiles links the named files, and everything they import, from the
// given descriptor protos. Files are returned in the order they are named.
// Every import must be among protos, and imports may not form a cycle.
func LinkFiles(protos []*descriptorpb.FileDescriptorProto, names []string) ([]*desc.FileDescriptor, error) {
	l := linker{
		sources:  make(map[string]*descriptorpb.FileDescriptorProto, len(protos)),
		resolved: map[string]*desc.FileDescriptor{},
	}
	for _, fd := range protos {
		l.sources[fd.GetName()] = fd
	}
	files := make([]*desc.FileDescriptor, len(names))
	for i, name := range names {
		fdp, ok := l.sources[name]
		if !ok {
			return nil, fmt.Errorf("requested file %q was not supplied", name)
		}
		var err error
		if files[i], err = l.link(fdp); err != nil {
			return nil, err
		}
	}
	return files, nil
}

type linker struct {
	sources  map[string]*descriptorpb.FileDescriptorProto
	resolved map[string]*desc.FileDescriptor
	// files currently being linked, outermost first
	chain []string
}

func (l *linker) link(fdp *descriptorpb.FileDescriptorProto) (*desc.FileDescriptor, error) {
	if fd, ok := l.resolved[fdp.GetName()]; ok {
		return fd, nil
	}
	for i, name := range l.chain {
		if name == fdp.GetName() {
			cycle := append(append([]string(nil), l.chain[i:]...), name)
			return nil, fmt.Errorf("cyclic imports: %s", strings.Join(cycle, " -> "))
		}
	}
	l.chain = append(l.chain, fdp.GetName())
	defer func() { l.chain = l.chain[:len(l.chain)-1] }()

	deps := make([]*desc.FileDescriptor, len(fdp.Dependency))
	for i, dep := range fdp.Dependency {
		src, ok := l.sources[dep]
		if !ok {
			return nil, fmt.Errorf("%s: dependency %q was not supplied", fdp.GetName(), dep)
		}
		var err error
		if deps[i], err = l.link(src); err != nil {
			return nil, err
		}
	}
	fd, err := desc.CreateFileDescriptor(fdp, deps...)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", fdp.GetName(), err)
	}
	l.resolved[fdp.GetName()] = fd
	return fd, nil
}

func errResponse(name string, err error) *pluginpb.CodeGeneratorResponse {
	return &pluginpb.CodeGeneratorResponse{
		Error: proto.String(fmt.Sprintf("%s: %v", name, err)),
	}
}

func pluginName(name string) string {
	if strings.HasPrefix(name, "protoc-gen-") {
		return name[len("protoc-gen-"):]
	}
	return name
}
