package loader

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/modelhost/containerstd/internal/handlerspec"
)

// FindScripts recursively lists every customer script under root. A missing
// root is not an error; containers without customer code return an empty
// list.
func FindScripts(root string) ([]string, error) {
	var scripts []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fs.SkipAll
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), handlerspec.ScriptSuffix) {
			scripts = append(scripts, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scripts, nil
}
