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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nabbar/edgehttp/internal/config"
)

const sampleYAML = `
server_configuration:
  listeners:
    - socket_kind: tcp
      bind_address: "127.0.0.1:8080"
    - socket_kind: unix
      bind_address: "/tmp/edgehttp.sock"
  connection:
    limit: 128
    max_lifetime: 2h
    graceful_shutdown_timeout: 5s
static_file_configuration:
  root: ./testdata/static
  precompressed:
    br: true
    gz: true
  client_error_page_path: ./testdata/static/error.html
  cache_rules:
    - path_regex: '\.css$'
      rule_type: FIXED_TIME
      duration: 24h
    - host_regex: 'cdn\.example\.com'
      path_regex: '.*'
      rule_type: MOD_TIME_PLUS_DELTA
      duration: 1h
context_configuration:
  dynamic_route_context: /api
command_configuration:
  max_concurrent_commands: 2
  semaphore_acquire_timeout: 3s
  commands:
    - id: uptime
      description: "host uptime"
      command: uptime
      args: []
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return p
}

func TestLoadValidConfig(t *testing.T) {
	p := writeTemp(t, "config.yaml", sampleYAML)

	cfg, err := config.Load(p)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.ServerConfiguration.Listeners) != 2 {
		t.Fatalf("expected 2 listeners, got %d", len(cfg.ServerConfiguration.Listeners))
	}
	if cfg.ServerConfiguration.Connection.Limit != 128 {
		t.Fatalf("expected limit 128, got %d", cfg.ServerConfiguration.Connection.Limit)
	}
	if cfg.ServerConfiguration.Connection.MaxLifetime.Time().Hours() != 2 {
		t.Fatalf("expected max_lifetime 2h, got %v", cfg.ServerConfiguration.Connection.MaxLifetime)
	}
	if len(cfg.StaticFileConfiguration.CacheRules) != 2 {
		t.Fatalf("expected 2 cache rules, got %d", len(cfg.StaticFileConfiguration.CacheRules))
	}
	if len(cfg.CommandConfiguration.Commands) != 1 || cfg.CommandConfiguration.Commands[0].ID != "uptime" {
		t.Fatalf("unexpected commands: %+v", cfg.CommandConfiguration.Commands)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidListeners(t *testing.T) {
	p := writeTemp(t, "config.yaml", `
server_configuration:
  listeners: []
  connection:
    limit: 1
command_configuration:
  max_concurrent_commands: 1
`)
	if _, err := config.Load(p); err == nil {
		t.Fatal("expected validation error for empty listeners")
	}
}

func TestLoadDuplicateCommandID(t *testing.T) {
	p := writeTemp(t, "config.yaml", `
server_configuration:
  listeners:
    - socket_kind: tcp
      bind_address: "127.0.0.1:0"
  connection:
    limit: 1
command_configuration:
  max_concurrent_commands: 1
  commands:
    - id: dup
      command: uptime
    - id: dup
      command: uptime
`)
	if _, err := config.Load(p); err == nil {
		t.Fatal("expected validation error for duplicate command id")
	}
}
