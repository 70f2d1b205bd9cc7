package pipeline

import (
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
)

// Load returns opts.Tree after validation, or reads opts.Source.
func Load(opts Options) (*family.Tree, error) {
	if opts.Tree != nil {
		if err := family.Validate(opts.Tree); err != nil {
			return nil, err
		}
		return opts.Tree, nil
	}
	if opts.Source == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "tree or source is required")
	}
	return family.ReadFile(opts.Source)
}
