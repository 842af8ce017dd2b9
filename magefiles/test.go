//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/sh"
)

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs the test suite with coverage and writes coverage.out.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	fmt.Println("Coverage profile written to coverage.out")
	return nil
}
