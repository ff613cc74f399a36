/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nabbar/edgehttp/internal/xerrors"
)

// Load reads, decodes and validates the configuration file at path. Format
// is inferred from the file extension (yaml, yml, json, toml) the way
// nabbar-golib/config lets viper pick the codec from SetConfigFile.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(path)

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext != "" {
		v.SetConfigType(ext)
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeConfigRead, fmt.Sprintf("reading config file %q", path), err)
	}

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeConfigParse, "decoding config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeConfigInvalid, "validating config", err)
	}

	return cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("context_configuration.dynamic_route_context", "")
	v.SetDefault("server_configuration.connection.limit", 256)
	v.SetDefault("command_configuration.max_concurrent_commands", 4)
	v.SetDefault("command_configuration.semaphore_acquire_timeout", "5s")
}
