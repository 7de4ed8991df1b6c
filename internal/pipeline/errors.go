package pipeline

import "errors"

// ErrNoChanges means there was nothing staged to generate from.
var ErrNoChanges = errors.New("no staged changes to generate a commit message from")

// ErrAllIgnored means every staged change matched an ignore pattern. Kept
// distinct from ErrNoChanges so the user learns why nothing was sent.
var ErrAllIgnored = errors.New("all staged changes matched ignore patterns")
