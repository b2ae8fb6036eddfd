package main

import (
	"os"
	sys "os"
)

func main() {
	defer cleanup()

	if len(os.Args) > 2 {
		os.Exit(2) // want "avoid using os.Exit in main.main"
	}
	if len(os.Args) > 1 {
		sys.Exit(1) // want "avoid using os.Exit in main.main"
	}

	fail := func() {
		os.Exit(3)
	}
	_ = fail

	exit(0)
}

func cleanup() {}

func exit(code int) {
	os.Exit(code)
}
