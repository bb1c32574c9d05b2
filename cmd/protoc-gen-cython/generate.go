package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cytobuf/protoc-gen-cython/internal/render"
	"github.com/cytobuf/protoc-gen-cython/plugins"
)

type cmdGenerate struct {
	descriptorSet string
	outDir        string
	configFile    string
	prefix        string
	logLevel      string
	manifest      bool
	serial        bool
	reserved      []string
}

func newGenerateCmd() *cobra.Command {
	gen := &cmdGenerate{}
	cmd := &cobra.Command{
		Use:   "generate --descriptor_set_in=FILE [flags] [proto files...]",
		Short: "Generate files from a serialized FileDescriptorSet",
		Long: "Generate files from serialized FileDescriptorSets. The sets must include\n" +
			"the imports of the named files. With no files named, every file in the\n" +
			"sets is generated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return gen.run(cmd, args)
		},
	}
	gen.flags(cmd.Flags())
	_ = cmd.MarkFlagRequired("descriptor_set_in")
	return cmd
}

func (gen *cmdGenerate) flags(flags *pflag.FlagSet) {
	flags.StringVar(&gen.descriptorSet, "descriptor_set_in", "", "serialized FileDescriptorSets to read, separated by the OS path list separator")
	flags.StringVarP(&gen.outDir, "out", "o", ".", "directory to write generated files to")
	flags.StringVar(&gen.configFile, "config", "", "YAML config file")
	flags.StringVar(&gen.prefix, "prefix", "", "module prefix for all generated modules")
	flags.StringVar(&gen.logLevel, "log_level", defaultLogLevel, "log level")
	flags.BoolVar(&gen.manifest, "manifest", false, "also write "+render.ManifestName)
	flags.BoolVar(&gen.serial, "serial", false, "build file representations one at a time")
	flags.StringSliceVar(&gen.reserved, "reserved", nil, "extra reserved names")
}

func (gen *cmdGenerate) options(flags *pflag.FlagSet) (*options, error) {
	opts, err := loadConfig(gen.configFile)
	if err != nil {
		return nil, err
	}
	if flags.Changed("prefix") {
		opts.Prefix = gen.prefix
	}
	if flags.Changed("log_level") {
		opts.LogLevel = gen.logLevel
	}
	if flags.Changed("manifest") {
		opts.Manifest = gen.manifest
	}
	if flags.Changed("serial") {
		opts.Serial = gen.serial
	}
	opts.ReservedNames = append(opts.ReservedNames, gen.reserved...)
	return opts, nil
}

func (gen *cmdGenerate) run(cmd *cobra.Command, args []string) error {
	opts, err := gen.options(cmd.Flags())
	if err != nil {
		return err
	}
	log, err := newLogger(opts.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	files, err := loadDescriptors(strings.Split(gen.descriptorSet, string(os.PathListSeparator)), args)
	if err != nil {
		return err
	}
	req := &plugins.CodeGenRequest{Files: files}

	outputs, err := generate(cmd.Context(), req.AllFiles(), req.FileNames(), opts, log)
	if err != nil {
		return err
	}
	return render.WriteFiles(gen.outDir, outputs)
}
