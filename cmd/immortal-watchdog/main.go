// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/immortal/lib/config"
	"github.com/bureau-foundation/immortal/lib/immortal"
	"github.com/bureau-foundation/immortal/lib/process"
	"github.com/bureau-foundation/immortal/lib/version"
)

func main() {
	if err := run(os.Args); err != nil {
		process.Fatal(err)
	}
}

// arguments holds the parsed command line.
type arguments struct {
	configPath string
	help       bool
	invocation immortal.WatchdogInvocation
}

func run(argv []string) error {
	// Handle --version before anything else.
	if len(argv) > 1 && argv[1] == "--version" {
		version.Print("immortal-watchdog")
		return nil
	}

	parsed, err := parseArguments(argv)
	if err != nil {
		return err
	}
	if parsed.help {
		return nil
	}

	var options []immortal.Option
	if parsed.configPath != "" {
		cfg, err := config.LoadFile(parsed.configPath)
		if err != nil {
			return err
		}
		options = append(options, immortal.WithConfig(cfg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return immortal.RunWatchdog(ctx, parsed.invocation, options...)
}

func parseArguments(argv []string) (arguments, error) {
	var result arguments

	flagSet := pflag.NewFlagSet("immortal-watchdog", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&result.configPath, "config", "", "config file (default: $IMMORTAL_CONFIG)")
	flagSet.BoolVarP(&result.help, "help", "h", false, "show help")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: immortal-watchdog [--config path] <interval> <max-fails> <program> [args...]\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(argv[1:]); err != nil {
		return arguments{}, err
	}
	if result.help {
		flagSet.Usage()
		return result, nil
	}

	invocation, err := immortal.ParseWatchdogArgs(append([]string{argv[0]}, flagSet.Args()...))
	if err != nil {
		return arguments{}, err
	}
	result.invocation = invocation
	return result, nil
}
