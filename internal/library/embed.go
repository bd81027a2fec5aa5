package library

import (
	"embed"
	"io/fs"
)

//go:embed builtin
var builtinFS embed.FS

// BuiltinName is the display name of the embedded library.
const BuiltinName = "builtin"

// Builtin returns the template library embedded in the binary.
func Builtin() (*Library, error) {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	return Load(sub, BuiltinName)
}

// Select opens the library at dir, or the builtin library when dir is empty.
func Select(dir string) (*Library, error) {
	if dir == "" {
		return Builtin()
	}
	return Open(dir)
}
