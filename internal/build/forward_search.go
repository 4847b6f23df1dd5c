package build

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"texls/internal/config"
)

// SearchStatus is the outcome of a forward search.
type SearchStatus int

const (
	SearchSuccess SearchStatus = iota
	SearchError
	SearchFailure
	SearchUnconfigured
)

// SearchResult is the response payload of a forward-search request.
type SearchResult struct {
	Status SearchStatus `json:"status"`
}

// ForwardSearch asks the configured previewer to jump to the location in
// the compiled document corresponding to texPath:line. parentPath is the
// effective build root whose output file the previewer opens. Placeholders
// in the configured arguments: %f the source file, %p the PDF, %l the line.
func ForwardSearch(ctx context.Context, texPath, parentPath string, line int, options *config.Options) SearchResult {
	search := options.LaTeX.ForwardSearch
	if search.Executable == "" {
		return SearchResult{Status: SearchUnconfigured}
	}

	outputDir := filepath.Dir(parentPath)
	if options.LaTeX.Build.OutputDirectory != "" {
		outputDir = options.LaTeX.Build.OutputDirectory
		if !filepath.IsAbs(outputDir) {
			outputDir = filepath.Join(filepath.Dir(parentPath), outputDir)
		}
	}
	base := strings.TrimSuffix(filepath.Base(parentPath), filepath.Ext(parentPath))
	pdfPath := filepath.Join(outputDir, base+".pdf")

	args := make([]string, 0, len(search.Args))
	for _, arg := range search.Args {
		arg = strings.ReplaceAll(arg, "%f", texPath)
		arg = strings.ReplaceAll(arg, "%p", pdfPath)
		arg = strings.ReplaceAll(arg, "%l", strconv.Itoa(line))
		args = append(args, arg)
	}

	cmd := exec.CommandContext(ctx, search.Executable, args...)
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return SearchResult{Status: SearchError}
		}
		return SearchResult{Status: SearchFailure}
	}
	return SearchResult{Status: SearchSuccess}
}
