package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

type options struct {
	Prefix        string   `yaml:"prefix,omitempty"`
	LogLevel      string   `yaml:"log_level,omitempty"`
	Manifest      bool     `yaml:"manifest,omitempty"`
	ReservedNames []string `yaml:"reserved_names,omitempty"`
	Serial        bool     `yaml:"serial,omitempty"`
}

const defaultLogLevel = "warning"

// parseOptions interprets the plugin parameters. Each arg may hold several
// parameters separated by whitespace. A parameter is "key=value", optionally
// with a leading "--", or "--key value". Values given as parameters take
// precedence over those in the config file.
func parseOptions(args []string) (*options, error) {
	var tokens []string
	for _, a := range args {
		tokens = append(tokens, strings.Fields(a)...)
	}

	var params options
	set := map[string]bool{}
	configFile := ""
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		dashed := strings.HasPrefix(tok, "--")
		arg := strings.SplitN(strings.TrimPrefix(tok, "--"), "=", 2)
		key := arg[0]
		if len(arg) == 1 && dashed && !isBoolParam(key) && i+1 < len(tokens) {
			i++
			arg = append(arg, tokens[i])
		}
		if len(arg) == 1 && !isBoolParam(key) {
			switch key {
			case "prefix", "config", "log_level", "reserved":
				return nil, fmt.Errorf("parameter %s requires a value", key)
			default:
				return nil, fmt.Errorf("unrecognized parameter: %s", key)
			}
		}

		switch key {
		case "prefix":
			params.Prefix = arg[1]
		case "config":
			configFile = arg[1]
		case "log_level":
			params.LogLevel = arg[1]
		case "reserved":
			params.ReservedNames = append(params.ReservedNames, strings.Split(arg[1], "|")...)
		case "manifest", "serial":
			v := true
			if len(arg) > 1 {
				var err error
				if v, err = strconv.ParseBool(arg[1]); err != nil {
					return nil, fmt.Errorf("parameter %s: %q is not a boolean", key, arg[1])
				}
			}
			if key == "manifest" {
				params.Manifest = v
			} else {
				params.Serial = v
			}
		default:
			return nil, fmt.Errorf("unrecognized parameter: %s", key)
		}
		set[key] = true
	}

	conf, err := loadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if set["prefix"] {
		conf.Prefix = params.Prefix
	}
	if set["log_level"] {
		conf.LogLevel = params.LogLevel
	}
	if set["manifest"] {
		conf.Manifest = params.Manifest
	}
	if set["serial"] {
		conf.Serial = params.Serial
	}
	conf.ReservedNames = append(conf.ReservedNames, params.ReservedNames...)
	return conf, nil
}

func isBoolParam(key string) bool {
	return key == "manifest" || key == "serial"
}

// loadConfig reads the YAML config file. An empty name yields the defaults.
func loadConfig(configFile string) (*options, error) {
	conf := options{LogLevel: defaultLogLevel}
	if configFile == "" {
		return &conf, nil
	}
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %v", configFile, err)
	}
	if err := yaml.UnmarshalStrict(b, &conf); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %v", configFile, err)
	}
	return &conf, nil
}
