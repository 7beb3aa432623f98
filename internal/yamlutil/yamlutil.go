// Package yamlutil decodes size-limited YAML documents with goccy/go-yaml.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

// Sentinel errors for decoding.
var (
	ErrEmpty          = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrSyntax         = errors.New("yamlutil: invalid document")
)

// Decode parses data into v. Unknown fields are rejected. Syntax and type
// errors wrap ErrSyntax and carry goccy's annotated source excerpt.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}

	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("%w:\n%s", ErrSyntax, yaml.FormatError(err, false, true))
	}
	return nil
}

// DecodeFile reads path from fs and decodes it into v.
func DecodeFile(fs afero.Fs, path string, v any) error {
	info, err := fs.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > int64(MaxInputSize) {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrInputTooLarge, path, info.Size(), MaxInputSize)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	return Decode(data, v)
}
