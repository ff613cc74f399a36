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

// Package config loads the single startup configuration file via viper,
// the way nabbar-golib/config pairs viper with a typed model. Configuration
// is read once at startup and is read-only for the remainder of the process.
package config

import (
	"fmt"

	"github.com/nabbar/edgehttp/internal/duration"
)

// SocketKind is the transport a listener accepts connections on.
type SocketKind string

const (
	SocketTCP  SocketKind = "tcp"
	SocketUnix SocketKind = "unix"
)

// ListenerConfig describes one accept loop.
type ListenerConfig struct {
	SocketKind  SocketKind `mapstructure:"socket_kind" yaml:"socket_kind"`
	BindAddress string     `mapstructure:"bind_address" yaml:"bind_address"`
}

// ConnectionConfig bounds the connection tracker and per-connection lifetime.
type ConnectionConfig struct {
	Limit                   int               `mapstructure:"limit" yaml:"limit"`
	MaxLifetime             duration.Duration `mapstructure:"max_lifetime" yaml:"max_lifetime"`
	GracefulShutdownTimeout duration.Duration `mapstructure:"graceful_shutdown_timeout" yaml:"graceful_shutdown_timeout"`
}

// ServerConfig is the §6 `server_configuration` block.
type ServerConfig struct {
	Listeners  []ListenerConfig `mapstructure:"listeners" yaml:"listeners"`
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`
}

// ContextConfig is the §6 `context_configuration` block.
type ContextConfig struct {
	DynamicRouteContext string `mapstructure:"dynamic_route_context" yaml:"dynamic_route_context"`
}

// CommandInfo is one configured shell command exposed under {ctx}/commands/{id}.
type CommandInfo struct {
	ID          string   `mapstructure:"id" yaml:"id" json:"id"`
	Description string   `mapstructure:"description" yaml:"description" json:"description"`
	Command     string   `mapstructure:"command" yaml:"command" json:"command"`
	Args        []string `mapstructure:"args" yaml:"args" json:"args"`
}

// CommandConfig is the §6 `command_configuration` block.
type CommandConfig struct {
	MaxConcurrentCommands   int               `mapstructure:"max_concurrent_commands" yaml:"max_concurrent_commands"`
	SemaphoreAcquireTimeout duration.Duration `mapstructure:"semaphore_acquire_timeout" yaml:"semaphore_acquire_timeout"`
	Commands                []CommandInfo     `mapstructure:"commands" yaml:"commands"`
}

// CacheRuleType selects the strategy a CachePolicyRule applies.
type CacheRuleType string

const (
	CacheRuleFixedTime        CacheRuleType = "FIXED_TIME"
	CacheRuleModTimePlusDelta CacheRuleType = "MOD_TIME_PLUS_DELTA"
)

// StaticFileCacheRule is one entry of the ordered cache-policy rule list.
type StaticFileCacheRule struct {
	HostRegex string            `mapstructure:"host_regex" yaml:"host_regex"`
	PathRegex string            `mapstructure:"path_regex" yaml:"path_regex"`
	RuleType  CacheRuleType     `mapstructure:"rule_type" yaml:"rule_type"`
	Duration  duration.Duration `mapstructure:"duration" yaml:"duration"`
}

// StaticFilePrecompressed toggles which precompressed encodings the resolver
// is allowed to serve.
type StaticFilePrecompressed struct {
	Br bool `mapstructure:"br" yaml:"br"`
	Gz bool `mapstructure:"gz" yaml:"gz"`
}

// StaticFileConfig is the §6 `static_file_configuration` block.
type StaticFileConfig struct {
	Root                          string                  `mapstructure:"root" yaml:"root"`
	Precompressed                 StaticFilePrecompressed `mapstructure:"precompressed" yaml:"precompressed"`
	ClientErrorPagePath           string                  `mapstructure:"client_error_page_path" yaml:"client_error_page_path"`
	ClientErrorPageCacheDuration  *duration.Duration      `mapstructure:"client_error_page_cache_duration" yaml:"client_error_page_cache_duration"`
	CacheRules                    []StaticFileCacheRule   `mapstructure:"cache_rules" yaml:"cache_rules"`
}

// Configuration is the full top-level configuration file.
type Configuration struct {
	ServerConfiguration     ServerConfig      `mapstructure:"server_configuration" yaml:"server_configuration"`
	StaticFileConfiguration StaticFileConfig  `mapstructure:"static_file_configuration" yaml:"static_file_configuration"`
	ContextConfiguration    ContextConfig     `mapstructure:"context_configuration" yaml:"context_configuration"`
	CommandConfiguration    CommandConfig     `mapstructure:"command_configuration" yaml:"command_configuration"`
}

// Validate enforces the structural invariants §3/§6 require before the
// configuration is handed to the rest of the process.
func (c *Configuration) Validate() error {
	if len(c.ServerConfiguration.Listeners) == 0 {
		return fmt.Errorf("server_configuration.listeners must not be empty")
	}
	if c.ServerConfiguration.Connection.Limit < 1 {
		return fmt.Errorf("server_configuration.connection.limit must be >= 1")
	}
	if c.CommandConfiguration.MaxConcurrentCommands < 1 {
		return fmt.Errorf("command_configuration.max_concurrent_commands must be >= 1")
	}
	seen := make(map[string]bool, len(c.CommandConfiguration.Commands))
	for _, cmd := range c.CommandConfiguration.Commands {
		if seen[cmd.ID] {
			return fmt.Errorf("command_configuration.commands: duplicate id %q", cmd.ID)
		}
		seen[cmd.ID] = true
	}
	for _, l := range c.ServerConfiguration.Listeners {
		if l.SocketKind != SocketTCP && l.SocketKind != SocketUnix {
			return fmt.Errorf("server_configuration.listeners: invalid socket_kind %q", l.SocketKind)
		}
	}
	for _, r := range c.StaticFileConfiguration.CacheRules {
		if r.RuleType != CacheRuleFixedTime && r.RuleType != CacheRuleModTimePlusDelta {
			return fmt.Errorf("static_file_configuration.cache_rules: invalid rule_type %q", r.RuleType)
		}
	}
	return nil
}
