// Copyright (C) 2026 The ohmu Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"tlog.app/go/errors"
)

// Config is ohmu's project configuration, loaded from ohmu.toml in the
// current directory if present. Every field has a usable zero-value
// default, so a missing ohmu.toml is not an error.
type Config struct {
	Encode EncodeConfig `toml:"encode"`
	Log    LogConfig    `toml:"log"`
}

// EncodeConfig sets where the encode subcommand writes its demo tree when
// invoked without an output file argument.
type EncodeConfig struct {
	Output string `toml:"output"`
}

// LogConfig holds a log verbosity setting. It is parsed from ohmu.toml,
// but no subcommand reads it and it has no effect on tlog.
type LogConfig struct {
	Verbosity string `toml:"verbosity"`
}

func defaultConfig() Config {
	return Config{
		Encode: EncodeConfig{Output: "out.ohm"},
	}
}

// loadConfig reads ohmu.toml from the current directory, if one exists,
// layering it over defaultConfig.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	path := filepath.Join(".", "ohmu.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "read %v", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse %v", path)
	}
	if cfg.Encode.Output == "" {
		cfg.Encode.Output = "out.ohm"
	}
	return cfg, nil
}
