package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp(os.Stdout)
	if err := a.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "padctl: %v\n", err)
		os.Exit(1)
	}
	os.Exit(a.exitCode)
}
