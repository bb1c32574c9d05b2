package main

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/cytobuf/protoc-gen-cython/cython"
	"github.com/cytobuf/protoc-gen-cython/internal/render"
	"github.com/cytobuf/protoc-gen-cython/plugins"
)

func doCodeGen(req *plugins.CodeGenRequest, resp *plugins.CodeGenResponse) error {
	opts, err := parseOptions(req.Args)
	if err != nil {
		return err
	}
	log, err := newLogger(opts.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"protoc": req.ProtocVersion.String(),
		"files":  req.FileNames(),
	}).Debug("received code generation request")

	resp.SupportsProto3Optional()
	outputs, err := generate(context.Background(), req.AllFiles(), req.FileNames(), opts, log)
	if err != nil {
		return err
	}
	for _, out := range outputs {
		w, err := resp.OutputFile(out.Name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, out.Content); err != nil {
			return err
		}
	}
	return nil
}

// generate compiles the given descriptors and renders the files needed for
// the requested ones. Nothing is returned unless every step succeeds.
func generate(ctx context.Context, protos []*descriptorpb.FileDescriptorProto, requested []string, opts *options, log logrus.FieldLogger) ([]render.OutputFile, error) {
	result, err := cython.Compile(ctx, protos, requested, cython.Options{
		Prefix: opts.Prefix,
		Policy: cython.NewKeywordPolicy(opts.ReservedNames...),
		Logger: log,
		Serial: opts.Serial,
	})
	if err != nil {
		return nil, err
	}
	outputs, err := render.Render(result.Emit, render.Options{Manifest: opts.Manifest})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"emitted": len(result.Emit),
		"outputs": len(outputs),
	}).Info("generated files")
	return outputs, nil
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	return log, nil
}
