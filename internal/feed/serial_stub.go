//go:build !linux

package feed

import (
	"fmt"
	"os"
)

func openSerial(path string, baud int) (*os.File, error) {
	return nil, fmt.Errorf("serial feed not supported on this platform")
}
