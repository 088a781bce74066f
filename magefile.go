//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target runs the full test suite.
var Default = Test

// Build compiles the toolprobe binary.
func Build() error {
	return sh.RunV("go", "build", "-o", "bin/toolprobe", "./cmd/toolprobe")
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet across the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// CI runs vet and the tests, the way the pipeline does.
func CI() {
	mg.SerialDeps(Vet, Test)
}
