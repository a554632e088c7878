package painting

import "errors"

// ErrUnknownAlgorithm is returned for an algorithm name or value with no implementation.
var ErrUnknownAlgorithm = errors.New("painting: unknown algorithm")
