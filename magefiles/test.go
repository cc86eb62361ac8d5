//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// fuzzTargets lists the fuzz functions per package directory.
var fuzzTargets = map[string]string{
	"engine/resources/unit": "FuzzNewUnit",
	"engine/resources/bank": "FuzzNewBank",
}

// Runs every unit test with the race detector.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream())
	return err
}

// Runs each fuzz target for a short, fixed time.
func (Test) Fuzz() error {
	for dir, target := range fuzzTargets {
		fmt.Printf("Fuzzing %s in %s...\n", target, dir)
		if _, err := executeCmd("go", withArgs("test", "-run=^$", "-fuzz=^"+target+"$", "-fuzztime=30s", "."), withDir(dir), withStream()); err != nil {
			return err
		}
	}
	return nil
}
