package helpers

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/compozy/unitgen/pkg/jsonio"
)

// StdoutPath selects standard output instead of a file
const StdoutPath = "-"

// WriteJSON writes value to path, or to w when path is empty or "-"
func WriteJSON(fs afero.Fs, w io.Writer, path string, value any) error {
	if path == "" || path == StdoutPath {
		data, err := jsonio.Marshal(value)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return jsonio.WriteFileAtomic(fs, path, value)
}
