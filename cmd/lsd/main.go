package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// lsd is a short alias that replaces itself with linesched.
func main() {
	bin, err := exec.LookPath("linesched")
	if err != nil {
		fmt.Fprintln(os.Stderr, "lsd: linesched not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"linesched"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "lsd: %v\n", err)
		os.Exit(1)
	}
}
