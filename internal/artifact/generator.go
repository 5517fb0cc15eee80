// Package artifact materializes new simulation-input files from a base
// file plus parameter substitutions. It patches assignments of the
// form `name = value` line by line, which is enough for the parameter
// blocks of the solver files this tool drives.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ParamNotFoundError reports a substitution parameter that does not
// occur in the base artifact.
type ParamNotFoundError struct {
	Param    string
	BaseName string
}

func (e *ParamNotFoundError) Error() string {
	return fmt.Sprintf("parameter %q not found in base artifact %s", e.Param, e.BaseName)
}

// Generator writes parameterized copies of base artifacts. Ext is the
// artifact file extension including the dot, e.g. ".son".
type Generator struct {
	Ext string
}

// NewGenerator creates a generator for artifacts with the given file
// extension.
func NewGenerator(ext string) *Generator {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Generator{Ext: ext}
}

// Generate reads baseDir/baseName, substitutes every parameter in
// params, and writes outputDir/outputName, creating outputDir if
// needed. Generating the same (base, params) pair twice produces the
// same output; overwriting an existing output is permitted. A
// parameter that never occurs in the base file yields a
// *ParamNotFoundError.
func (g *Generator) Generate(baseName, baseDir, outputName, outputDir string, params map[string]float64) error {
	basePath := filepath.Join(baseDir, baseName+g.Ext)
	content, err := os.ReadFile(basePath)
	if err != nil {
		return fmt.Errorf("reading base artifact: %w", err)
	}

	text := string(content)
	for name, value := range params {
		patched, n := substitute(text, name, value)
		if n == 0 {
			return &ParamNotFoundError{Param: name, BaseName: baseName}
		}
		text = patched
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", outputDir, err)
		}
	}
	outputPath := filepath.Join(outputDir, outputName+g.Ext)
	if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", outputPath, err)
	}
	return nil
}

// substitute rewrites every `name = value` assignment for name and
// returns the patched text with the number of assignments touched.
func substitute(text, name string, value float64) (string, int) {
	pattern := regexp.MustCompile(`(?m)^(\s*` + regexp.QuoteMeta(name) + `\s*=\s*)\S+(.*)$`)
	count := 0
	patched := pattern.ReplaceAllStringFunc(text, func(line string) string {
		count++
		groups := pattern.FindStringSubmatch(line)
		return groups[1] + FormatValue(value) + groups[2]
	})
	return patched, count
}

// FormatValue renders a parameter value the way it appears in batch
// artifact names and patched files.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
