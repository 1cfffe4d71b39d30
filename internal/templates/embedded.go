package templates

import (
	"embed"
	"io/fs"
)

//go:embed html
var embeddedFS embed.FS

// Embedded returns a Renderer over the built-in default page templates.
func Embedded() *Renderer {
	sub, err := fs.Sub(embeddedFS, "html")
	if err != nil {
		panic("Failed to create embedded template filesystem: " + err.Error())
	}
	return New(sub, "embedded")
}

// ListEmbedded returns the identifiers of all built-in templates.
func ListEmbedded() ([]string, error) {
	var files []string
	err := fs.WalkDir(embeddedFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path[len("html/"):])
		}
		return nil
	})
	return files, err
}
