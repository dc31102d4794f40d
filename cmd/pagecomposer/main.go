/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"pagecomposer/internal/config"
	"pagecomposer/internal/crash"
	"pagecomposer/internal/export"
	"pagecomposer/internal/imaging"
	"pagecomposer/internal/interact"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/scene"
	"pagecomposer/internal/script"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/version"
)

func usage() {
	fmt.Println("Page Composer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pagecomposer version|-v|--version                      Show version")
	fmt.Println("  pagecomposer new <title>                               Create an empty project and print its id")
	fmt.Println("  pagecomposer list                                      List stored projects, newest first")
	fmt.Println("  pagecomposer show <id>                                 Print pages and layers of a project")
	fmt.Println("  pagecomposer delete <id>                               Remove a stored project")
	fmt.Println("  pagecomposer replay [-project id] [-save] <script>     Replay a YAML event script")
	fmt.Println("  pagecomposer export [-scale n|-preset web|print] [-pages 0,1] <id> <out.png|out.pdf>")
	fmt.Println("  pagecomposer dump <id> <file.json>                     Write a project document to disk (keeps backups)")
	fmt.Println("  pagecomposer import <file.json>                        Store a project document read from disk")
}

// app carries what every subcommand needs.
type app struct {
	cfg     config.AppConfig
	store   *storage.Store
	log     *slog.Logger
	current *scene.Project
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Println("Page Composer")
		fmt.Println(version.String())
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
	}
	initLogging(cfg.Logging)
	l = applog.WithComponent("cli")

	a := &app{cfg: cfg, log: l}
	dataDir, _ := config.BaseDir()
	defer crash.Recover(dataDir, func() *scene.Project { return a.current })

	st, err := storage.OpenStore(cfg.Storage.Path, cfg.Storage.QuotaBytes)
	if err != nil {
		l.Error("open store failed", slog.String("path", cfg.Storage.Path), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	a.store = st

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = a.run(ctx, args[0], args[1:])
	stop()
	if cerr := st.Close(); cerr != nil {
		l.Warn("close store failed", slog.Any("err", cerr))
	}
	var ue usageError
	switch {
	case err == nil:
	case errors.As(err, &ue):
		fmt.Println(ue.msg)
		usage()
		os.Exit(2)
	default:
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// initLogging re-initializes the logger when the config file sets logging
// options the environment does not.
func initLogging(lc config.LoggingConfig) {
	opts := applog.FromEnv()
	if _, ok := os.LookupEnv(applog.EnvLevel); !ok && lc.Level != "" {
		opts.Level = lc.Level
	}
	if _, ok := os.LookupEnv(applog.EnvFormat); !ok && lc.Format != "" {
		opts.Format = lc.Format
	}
	if _, ok := os.LookupEnv(applog.EnvFile); !ok && lc.File != "" {
		opts.File = lc.File
	}
	if _, ok := os.LookupEnv(applog.EnvSource); !ok && lc.Source {
		opts.AddSource = true
	}
	applog.Init(opts)
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "new":
		if len(args) < 1 {
			return usageError{"new requires <title>"}
		}
		return a.newProject(ctx, strings.Join(args, " "))
	case "list":
		return a.list(ctx)
	case "show":
		if len(args) < 1 {
			return usageError{"show requires <id>"}
		}
		return a.show(ctx, args[0])
	case "delete":
		if len(args) < 1 {
			return usageError{"delete requires <id>"}
		}
		if err := a.store.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	case "replay":
		return a.replay(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "dump":
		if len(args) < 2 {
			return usageError{"dump requires <id> and <file.json>"}
		}
		p, err := a.load(ctx, args[0])
		if err != nil {
			return err
		}
		if err := storage.WriteFile(args[1], p); err != nil {
			return err
		}
		fmt.Println("Wrote", args[1])
		return nil
	case "import":
		if len(args) < 1 {
			return usageError{"import requires <file.json>"}
		}
		p, warnings, err := storage.ReadFile(args[0])
		if err != nil {
			return err
		}
		a.warn(warnings)
		a.current = p
		return a.save(ctx, p)
	default:
		return usageError{fmt.Sprintf("unknown command %q", cmd)}
	}
}

func (a *app) newProject(ctx context.Context, title string) error {
	p := scene.NewProject(title, a.cfg.Page.Width, a.cfg.Page.Height)
	a.current = p
	return a.save(ctx, p)
}

func (a *app) save(ctx context.Context, p *scene.Project) error {
	res, err := a.store.Save(ctx, p)
	if err != nil {
		return err
	}
	for _, id := range res.Pruned {
		fmt.Println("Pruned", id)
	}
	fmt.Printf("Saved %s (%s, %d bytes)\n", res.Entry.ID, res.Entry.Title, res.Entry.Size)
	return nil
}

func (a *app) load(ctx context.Context, id string) (*scene.Project, error) {
	p, warnings, err := a.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	a.warn(warnings)
	a.current = p
	return p, nil
}

func (a *app) warn(warnings []error) {
	for _, w := range warnings {
		a.log.Warn("document warning", slog.Any("err", w))
	}
}

func (a *app) list(ctx context.Context) error {
	entries, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No projects stored in", a.store.Path())
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  %8d  %s\n", e.ID, e.SavedAt.Format("2006-01-02 15:04:05"), e.Size, e.Title)
	}
	if used, err := a.store.Usage(ctx); err == nil {
		fmt.Printf("%d projects, %d bytes\n", len(entries), used)
	}
	return nil
}

func (a *app) show(ctx context.Context, id string) error {
	p, err := a.load(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("Project: %s (%s)\n", p.Title, p.ID)
	for i, pg := range p.Pages {
		mark := " "
		if i == p.ActivePageIndex {
			mark = "*"
		}
		fmt.Printf("%s page %d  %gx%g  layers: %d\n", mark, i, pg.W, pg.H, len(pg.Layers))
		if pg.Background != nil {
			fmt.Printf("    background  %s\n", pg.Background.Source)
		}
		for _, l := range pg.Layers {
			pr := l.Props()
			switch v := l.(type) {
			case *scene.TextLayer:
				fmt.Printf("    text   z=%d  (%g,%g)  %q\n", pr.ZIndex, pr.X, pr.Y, v.Text)
			case *scene.ImageLayer:
				fmt.Printf("    image  z=%d  (%g,%g)  %gx%g\n", pr.ZIndex, pr.X, pr.Y, v.Width, v.Height)
			}
		}
	}
	return nil
}

// controller builds a controller with an image loader attached; callers Load
// their project into it and close the returned loader.
func (a *app) controller() (*interact.Controller, *imaging.Loader) {
	loader := imaging.NewLoader(0)
	ctl := interact.New(nil, nil, interact.OptionsFromConfig(a.cfg), interact.Hooks{})
	ctl.SetLoader(loader)
	return ctl, loader
}

func (a *app) replay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	projectID := fs.String("project", "", "replay onto a stored project")
	save := fs.Bool("save", false, "store the result")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() < 1 {
		return usageError{"replay requires <script.yaml>"}
	}
	s, err := script.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}

	var p *scene.Project
	if *projectID != "" {
		if p, err = a.load(ctx, *projectID); err != nil {
			return err
		}
	} else {
		w, h := a.cfg.Page.Width, a.cfg.Page.Height
		if s.Page.Width > 0 && s.Page.Height > 0 {
			w, h = s.Page.Width, s.Page.Height
		}
		p = scene.NewProject(s.Title, w, h)
	}
	a.current = p

	ctl, loader := a.controller()
	defer loader.Close()
	ctl.Load(ctx, p)
	r := &script.Runner{Ctl: ctl, Ready: loader.Ready()}
	if err := r.Run(ctx, s); err != nil {
		return err
	}
	hs := ctl.History().Stats()
	fmt.Printf("Replayed %d steps: %d pages, undo depth %d\n", len(s.Steps), len(p.Pages), hs.UndoDepth)
	if !*save {
		return nil
	}
	return a.save(ctx, ctl.Project())
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	scale := fs.Float64("scale", 0, "pixels per page unit (default 2)")
	preset := fs.String("preset", "", "web or print")
	pages := fs.String("pages", "", "comma separated page indexes")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() < 2 {
		return usageError{"export requires <id> and <out>"}
	}

	var opt export.Options
	if *preset != "" {
		o, err := export.PresetOptions(export.PresetName(*preset))
		if err != nil {
			return usageError{err.Error()}
		}
		opt = o
	}
	if *scale > 0 {
		opt.Scale = *scale
	}
	if *pages != "" {
		for _, f := range strings.Split(*pages, ",") {
			i, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return usageError{fmt.Sprintf("bad page index %q", f)}
			}
			opt.Pages = append(opt.Pages, i)
		}
	}

	p, err := a.load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	ctl, loader := a.controller()
	defer loader.Close()
	ctl.Load(ctx, p)
	// an empty script only waits for the decodes Load started
	if err := (&script.Runner{Ctl: ctl, Ready: loader.Ready()}).Run(ctx, script.Script{}); err != nil {
		return err
	}

	written, err := export.ToFile(p, fs.Arg(1), opt)
	if err != nil {
		return err
	}
	for _, f := range written {
		fmt.Println("Wrote", f)
	}
	return nil
}
