// Command pyflow is a thin driver over the library: it parses files
// (printing diagnostics) and resolves module names against a
// YAML-configured search-path set. It exists so the core packages have
// an end-to-end consumer; the real host is expected to embed the
// library.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/Tangerg/pyflow/batchparse"
	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/parser"
	"github.com/Tangerg/pyflow/resolve"
	"github.com/Tangerg/pyflow/resolve/config"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(logger, os.Args[2:])
	case "resolve":
		err = runResolve(logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.WithError(err).Fatal(os.Args[1] + " failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: pyflow parse [-notebook] [-jobs N] <file>...")
	fmt.Fprintln(os.Stderr, "       pyflow resolve [-config settings.yaml] [-mode M] [-from file] <module>...")
}

func runParse(logger *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	notebook := fs.Bool("notebook", false, "enable interactive-notebook escape commands")
	jobs := fs.String("jobs", "0", "max files parsed concurrently (0 = unbounded)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("parse: no files given")
	}

	mode := parser.File
	if *notebook {
		mode = parser.InteractiveNotebook
	}
	var sources []batchparse.Source
	for _, path := range fs.Args() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		sources = append(sources, batchparse.Source{Path: path, Content: string(content), Mode: mode})
	}

	runner := &batchparse.Runner{Concurrency: cast.ToInt(*jobs), Logger: logger}
	failed := false
	for _, result := range runner.Run(context.Background(), sources) {
		if result.Err != nil {
			logger.WithError(result.Err).Error(result.Path)
			failed = true
			continue
		}
		for _, d := range result.Diagnostics {
			fmt.Printf("%s:%s\n", result.Path, d)
			failed = true
		}
		fmt.Printf("%s: %d top-level statements, %d diagnostics\n",
			result.Path, len(result.AST.Module.Body), len(result.Diagnostics))
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func runResolve(logger *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML search-path settings")
	modeFlag := fs.String("mode", "stubs", "resolution mode: stubs, no-stubs, no-stubs-shadow")
	fromFile := fs.String("from", "", "importing file, enables desperate fallback")
	version := fs.String("python", "3.12", "target interpreter version")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("resolve: no module names given")
	}

	settings := &config.SearchPathSettings{}
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			return err
		}
		defer f.Close()
		settings, err = config.Load(f)
		if err != nil {
			return err
		}
	}

	disk := fsabs.NewOS()
	validated, err := settings.Validate(disk)
	if err != nil {
		return err
	}

	var mode resolve.Mode
	switch *modeFlag {
	case "stubs":
		mode = resolve.StubsAllowed
	case "no-stubs":
		mode = resolve.StubsNotAllowed
	case "no-stubs-shadow":
		mode = resolve.StubsNotAllowedSomeShadowingAllowed
	default:
		return fmt.Errorf("resolve: unknown mode %q", *modeFlag)
	}

	resolver := resolve.New(resolve.Options{
		FS:            disk,
		Settings:      validated,
		Logger:        logger,
		PythonVersion: cast.ToString(*version),
	})

	missing := false
	for _, name := range fs.Args() {
		module, ok := resolver.Resolve(*fromFile, name, mode)
		if !ok {
			fmt.Printf("%s: not found\n", name)
			missing = true
			continue
		}
		if module.IsNamespace {
			fmt.Printf("%s: namespace package (%s)\n", name, module.SearchPath)
			continue
		}
		fmt.Printf("%s: %s (%s, py.typed=%s)\n", name, module.File, module.SearchPath, module.PyTyped)
	}
	if missing {
		os.Exit(1)
	}
	return nil
}
