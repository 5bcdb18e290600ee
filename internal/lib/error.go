package lib

import "fmt"

// WrapError nests the cause under a sentinel error so both match with errors.Is
func WrapError(outer error, inner error) error {
	return fmt.Errorf("%w: %w", outer, inner)
}
