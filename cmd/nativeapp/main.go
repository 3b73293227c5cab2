package main

import (
	"fmt"
	"os"

	"github.com/agiangrant/nativeapp/cmd/nativeapp/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = commands.Init(args)
	case "check":
		err = commands.Check(args)
	case "run":
		err = commands.Run(args)
	case "build-ios":
		err = commands.BuildIOS(args)
	case "version", "-v", "--version":
		fmt.Printf("nativeapp version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`nativeapp - native_app bridge tooling

Usage: nativeapp <command> [options]

Commands:
  init        Write a default nativeapp.toml and sample input script
  check       Load a native_app library and report its symbols
  run         Drive an app headlessly from an input script
  build-ios   Build the bridge as a static archive for iOS
  version     Print version information
  help        Show this help message

Examples:
  nativeapp init
  nativeapp check --lib ./libnative_app.dylib
  nativeapp run --script input.toml --frames 60
  nativeapp build-ios --simulator --rev1

Configuration:
  Settings are read from nativeapp.toml in the working directory and can be
  overridden with NATIVEAPP_* environment variables.`)
}
