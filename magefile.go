//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildClustering)
	fmt.Println("Compilation finished")
	return nil
}

// The HDF5 bindings need cgo, so the C flags of the environment are passed on.
func cgoCommand(args ...string) *exec.Cmd {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func BuildClustering() error {
	fmt.Println("Building clustering executable...")
	return cgoCommand("build", "-o", "./bin/clustering", "./clustering").Run()
}

func Test() error {
	fmt.Println("Running tests...")
	return cgoCommand("test", "./...").Run()
}
