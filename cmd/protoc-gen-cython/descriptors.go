package main

import (
	"fmt"
	"os"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/cytobuf/protoc-gen-cython/plugins"
)

// loadDescriptors reads the given serialized descriptor sets and links the
// named files. When a file appears in more than one set, the first one wins.
// With no names given, every file in the sets is linked, in the order they
// appear.
func loadDescriptors(setFiles []string, names []string) ([]*desc.FileDescriptor, error) {
	var protos []*descriptorpb.FileDescriptorProto
	seen := map[string]struct{}{}
	for _, setFile := range setFiles {
		b, err := os.ReadFile(setFile)
		if err != nil {
			return nil, err
		}
		var set descriptorpb.FileDescriptorSet
		if err := proto.Unmarshal(b, &set); err != nil {
			return nil, fmt.Errorf("file %q is not a valid file descriptor set: %v", setFile, err)
		}
		for _, fd := range set.GetFile() {
			if _, ok := seen[fd.GetName()]; ok {
				continue
			}
			seen[fd.GetName()] = struct{}{}
			protos = append(protos, fd)
		}
	}
	if len(names) == 0 {
		names = make([]string, len(protos))
		for i, fd := range protos {
			names[i] = fd.GetName()
		}
	}
	return plugins.LinkFiles(protos, names)
}
