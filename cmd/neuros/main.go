package main

import (
	"flag"
	"fmt"
	"os"
)

type cli struct {
	args []string
}

type command interface {
	Name() string
	Help() string
	Run() error
	Register(*flag.FlagSet)
}

var (
	successExitCode = 0
	errorExitCode   = 1

	commands = []command{
		&runCommand{},
		&analyzeCommand{},
	}
)

func (c *cli) run() int {
	cmdName, args := parseArgs(c.args)
	if cmdName == "" {
		printUsage()
		return errorExitCode
	}

	for _, cmd := range commands {
		if cmd.Name() == cmdName {
			flags := flag.NewFlagSet(cmdName, flag.ExitOnError)
			cmd.Register(flags)
			if err := flags.Parse(args); err != nil {
				flags.PrintDefaults()
				return errorExitCode
			}
			if err := cmd.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
				return errorExitCode
			}
			return successExitCode
		}
	}

	printUsage()
	return errorExitCode
}

func main() {
	c := cli{
		args: os.Args,
	}
	os.Exit(c.run())
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage() {
	fmt.Println("Neuros streams multichannel biosignals through a processing pipeline")
	fmt.Println()
	fmt.Println("Usage: neuros <command>")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}

// wait drains the stream error channel, printing every failure.
func wait(errc <-chan error) error {
	var first error
	for err := range errc {
		if first == nil {
			first = err
		}
		fmt.Fprintf(os.Stderr, "stream error: %v\n", err)
	}
	return first
}
