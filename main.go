package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"jobsubmit.io/logger"
)

var parser = flags.NewNamedParser("jobsubmit", flags.PassDoubleDash)

func printHelp(parser *flags.Parser) {
	var b bytes.Buffer
	parser.WriteHelp(&b)
	fmt.Println(b.String())
}

func createHelpErr() error {
	err := flags.Error{
		Type:    flags.ErrHelp,
		Message: "show help message",
	}
	return &err
}

func main() {
	var err error
	args := []string{}
	// JOBSUBMIT_* settings may live in a local .env file
	if err = godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "WARNING: unable to read .env: %v\n", err)
	}
	if err = logger.Setup(); err != nil {
		goto errHandler
	}
	defer logger.Close()
	if args, err = parser.ParseArgs(os.Args[1:]); err != nil {
		goto errHandler
	}
	if err = submitCommand.Execute(args); err != nil {
		goto errHandler
	}
	return
errHandler:
	switch flagsErr := err.(type) {
	case *flags.Error:
		if flagsErr.Type == flags.ErrHelp {
			printHelp(parser)
			logger.Close()
			os.Exit(0)
		} else if flagsErr.Type == flags.ErrRequired ||
			flagsErr.Type == flags.ErrExpectedArgument {
			fmt.Println(flagsErr.Error())
			printHelp(parser)
		} else if flagsErr.Type == flags.ErrMarshal {
			fmt.Print("\n\nInvalid syntax\n\n")
			printHelp(parser)
		} else {
			fmt.Println(flagsErr.Error())
		}
		logger.Close()
		os.Exit(1)

	default:
		fmt.Fprintln(os.Stderr, err.Error())
		logger.DebugPrintf("%v", err)
		logger.Close()
		os.Exit(1)
	}
}
