//go:build !unix

package fileutil

import "errors"

// FreeSpace is unsupported on this platform; callers treat the error as
// "no free-space information available".
func FreeSpace(path string) (uint64, error) {
	return 0, errors.ErrUnsupported
}
