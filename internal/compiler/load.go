package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/miles-bartnik/tyr/internal/ir"
)

var (
	// ErrLoad marks failures to load the CUE package of a directory.
	ErrLoad = errors.New("load CUE package")

	// ErrBuild marks failures to evaluate a loaded CUE package.
	ErrBuild = errors.New("build CUE value")
)

// Load evaluates the CUE package in dir.
func Load(dir string) (cue.Value, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("%w: no instances in %s", ErrLoad, dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrLoad, inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("%w: %v", ErrBuild, err)
	}
	return v, nil
}

// LoadDir loads the CUE package in dir and compiles it.
func LoadDir(dir string) (*ir.Schema, error) {
	v, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return Compile(v)
}
