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

// Command edgehttp is the process entry point: one positional argument
// naming the configuration file, wiring the tracker, router, static-file
// handler, command executor and listener supervisor, the way src/main.rs
// bootstraps the original front end, adapted onto spf13/cobra for CLI
// parsing per nabbar-golib/cobra's pairing with spf13/viper-backed config.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/edgehttp/internal/cachepolicy"
	"github.com/nabbar/edgehttp/internal/commandexec"
	"github.com/nabbar/edgehttp/internal/config"
	"github.com/nabbar/edgehttp/internal/connection"
	"github.com/nabbar/edgehttp/internal/connserve"
	"github.com/nabbar/edgehttp/internal/handlers"
	"github.com/nabbar/edgehttp/internal/logging"
	"github.com/nabbar/edgehttp/internal/router"
	"github.com/nabbar/edgehttp/internal/staticfile"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "edgehttp [config-file]",
		Short:        "multi-protocol HTTP front end",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
}

func run(configPath string) error {
	log := logging.New()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Errorf("loading configuration: %v", err)
		return err
	}

	tracker := connection.NewTracker(cfg.ServerConfiguration.Connection.Limit)

	cachePolicy, err := cachepolicy.Compile(cfg.StaticFileConfiguration.CacheRules)
	if err != nil {
		log.Errorf("compiling cache policy: %v", err)
		return err
	}

	staticHandler := buildStaticHandler(cfg, cachePolicy, log)

	executor := commandexec.New(
		int64(cfg.CommandConfiguration.MaxConcurrentCommands),
		cfg.CommandConfiguration.SemaphoreAcquireTimeout.Time(),
		cfg.CommandConfiguration.Commands,
	)

	r := router.New(cfg.ContextConfiguration.DynamicRouteContext, staticHandler)

	if err := mountRoutes(r, cfg, tracker, executor, log); err != nil {
		log.Errorf("mounting routes: %v", err)
		return err
	}

	driver := connserve.NewDriver(connserve.LifetimeConfig{
		MaxLifetime:             cfg.ServerConfiguration.Connection.MaxLifetime.Time(),
		GracefulShutdownTimeout: cfg.ServerConfiguration.Connection.GracefulShutdownTimeout.Time(),
	}, log)

	supervisor := connserve.NewSupervisor(tracker, driver, r.Engine(), log)

	log.Infof("starting edgehttp with %d listener(s)", len(cfg.ServerConfiguration.Listeners))
	return supervisor.Run(cfg.ServerConfiguration.Listeners)
}

func buildStaticHandler(cfg *config.Configuration, policy *cachepolicy.Engine, log logging.Logger) http.Handler {
	resolver := staticfile.NewResolver(
		cfg.StaticFileConfiguration.Root,
		cfg.StaticFileConfiguration.Precompressed.Br,
		cfg.StaticFileConfiguration.Precompressed.Gz,
	)

	return staticfile.NewHandler(
		resolver,
		policy,
		cfg.StaticFileConfiguration.ClientErrorPagePath,
		errorPageCacheDuration(cfg),
		log,
	)
}

func errorPageCacheDuration(cfg *config.Configuration) *time.Duration {
	if cfg.StaticFileConfiguration.ClientErrorPageCacheDuration == nil {
		return nil
	}
	d := cfg.StaticFileConfiguration.ClientErrorPageCacheDuration.Time()
	return &d
}

func mountRoutes(r *router.Router, cfg *config.Configuration, tracker *connection.Tracker, executor *commandexec.Executor, log logging.Logger) error {
	if err := r.Register(http.MethodGet, "/connection_info", handlers.ConnectionInfoHandler(tracker, log)); err != nil {
		return err
	}
	if err := r.Register(http.MethodGet, "/request_info", handlers.RequestInfoHandler(log)); err != nil {
		return err
	}
	if err := r.Register(http.MethodGet, "/version_info", handlers.VersionInfoHandler(log)); err != nil {
		return err
	}
	if err := r.Register(http.MethodGet, "/commands", handlers.CommandsListHandler(executor, log)); err != nil {
		return err
	}
	for _, cmd := range cfg.CommandConfiguration.Commands {
		if err := r.Register(http.MethodGet, "/commands/"+cmd.ID, handlers.CommandRunHandler(executor, cmd.ID, log)); err != nil {
			return err
		}
	}
	return nil
}
