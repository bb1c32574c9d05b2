package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFiles writes the outputs below dir, creating directories as needed.
func WriteFiles(dir string, outputs []OutputFile) error {
	for _, file := range outputs {
		path := filepath.Join(dir, filepath.FromSlash(file.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("write file %s: %w", path, err)
		}
	}
	return nil
}
