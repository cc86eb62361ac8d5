//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

// Runs go mod tidy and go vet over the module.
func Lint() error {
	mg.Deps(Tidy)
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go mod tidy.
func Tidy() error {
	return goModTidy()
}
