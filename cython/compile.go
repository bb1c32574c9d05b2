package cython

import (
	"context"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Options configure a compilation.
type Options struct {
	// Prefix is prepended to every generated module path.
	Prefix string
	// Policy decides reserved names. Nil means the built-in keyword tables.
	Policy *KeywordPolicy
	// Logger receives debug output. Nil discards it.
	Logger logrus.FieldLogger
	// Serial assembles files one at a time instead of concurrently.
	Serial bool
}

// Result is the outcome of a successful compilation.
type Result struct {
	Symbols *SymbolTable
	// Files holds the representation of every supplied file, in input
	// order.
	Files []*File
	// Emit holds the files to generate, dependencies first.
	Emit []*File
}

// Compile builds the intermediate representation of every supplied file and
// selects the files to emit for the requested names. The supplied files must
// include every file the requested ones depend on, transitively.
//
// Any error aborts the whole compilation; no partial result is returned.
func Compile(ctx context.Context, protos []*descriptorpb.FileDescriptorProto, requested []string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	policy := opts.Policy
	if policy == nil {
		policy = NewKeywordPolicy()
	}

	table, err := BuildSymbolTable(protos, opts.Prefix, policy)
	if err != nil {
		return nil, err
	}
	log.WithField("symbols", table.Len()).Debug("built symbol table")

	// The table is read-only from here on and each file gets its own
	// imports, so files can be assembled concurrently.
	files := make([]*File, len(protos))
	grp, ctx := errgroup.WithContext(ctx)
	if opts.Serial {
		grp.SetLimit(1)
	} else {
		grp.SetLimit(runtime.GOMAXPROCS(0))
	}
	for i, fd := range protos {
		i, fd := i, fd
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := AssembleFile(fd, table, opts.Prefix, policy, log)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	emit, err := SelectEmission(files, requested, log)
	if err != nil {
		return nil, err
	}
	return &Result{Symbols: table, Files: files, Emit: emit}, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
