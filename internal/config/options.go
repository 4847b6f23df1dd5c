// Package config holds the server options recognized by texls and the
// strategies for fetching them from the client.
package config

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// BuildOptions configure the external build tool.
type BuildOptions struct {
	Executable      string
	Args            []string
	OutputDirectory string
	OnSave          bool
}

// LintOptions gate when the linter runs.
type LintOptions struct {
	OnChange bool
	OnSave   bool
}

// LaTeXOptions are the latex.* settings.
type LaTeXOptions struct {
	RootDirectory string
	Build         BuildOptions
	Lint          LintOptions
	ForwardSearch ForwardSearchOptions
}

// ForwardSearchOptions configure the PDF previewer invocation.
type ForwardSearchOptions struct {
	Executable string
	Args       []string
}

// FormattingOptions are the bibtex.formatting.* settings.
type FormattingOptions struct {
	LineLength int
}

// BibTeXOptions are the bibtex.* settings.
type BibTeXOptions struct {
	Formatting FormattingOptions
}

// Options is the full option tree consumed by the server.
type Options struct {
	LaTeX  LaTeXOptions
	BibTeX BibTeXOptions
}

// Default returns the options used before any client configuration arrives.
func Default() *Options {
	return &Options{
		LaTeX: LaTeXOptions{
			Build: BuildOptions{
				Executable: "latexmk",
				Args:       []string{"-pdf", "-interaction=nonstopmode", "-synctex=1"},
			},
		},
		BibTeX: BibTeXOptions{
			Formatting: FormattingOptions{LineLength: 120},
		},
	}
}

// Parse decodes a client-provided settings value into Options. Settings
// arrive as arbitrary JSON; unknown keys are ignored and missing keys keep
// their defaults, so partial configuration payloads are fine.
func Parse(settings any) *Options {
	options := Default()
	data, err := json.Marshal(settings)
	if err != nil {
		return options
	}
	root := gjson.ParseBytes(data)

	if v := root.Get("latex.rootDirectory"); v.Exists() {
		options.LaTeX.RootDirectory = v.String()
	}
	if v := root.Get("latex.build.executable"); v.Exists() {
		options.LaTeX.Build.Executable = v.String()
	}
	if v := root.Get("latex.build.args"); v.IsArray() {
		options.LaTeX.Build.Args = nil
		for _, arg := range v.Array() {
			options.LaTeX.Build.Args = append(options.LaTeX.Build.Args, arg.String())
		}
	}
	if v := root.Get("latex.build.outputDirectory"); v.Exists() {
		options.LaTeX.Build.OutputDirectory = v.String()
	}
	if v := root.Get("latex.build.onSave"); v.Exists() {
		options.LaTeX.Build.OnSave = v.Bool()
	}
	if v := root.Get("latex.lint.onChange"); v.Exists() {
		options.LaTeX.Lint.OnChange = v.Bool()
	}
	if v := root.Get("latex.lint.onSave"); v.Exists() {
		options.LaTeX.Lint.OnSave = v.Bool()
	}
	if v := root.Get("latex.forwardSearch.executable"); v.Exists() {
		options.LaTeX.ForwardSearch.Executable = v.String()
	}
	if v := root.Get("latex.forwardSearch.args"); v.IsArray() {
		options.LaTeX.ForwardSearch.Args = nil
		for _, arg := range v.Array() {
			options.LaTeX.ForwardSearch.Args = append(options.LaTeX.ForwardSearch.Args, arg.String())
		}
	}
	if v := root.Get("bibtex.formatting.lineLength"); v.Exists() {
		options.BibTeX.Formatting.LineLength = int(v.Int())
	}
	return options
}
