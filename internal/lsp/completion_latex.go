package lsp

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/component"
	"texls/internal/feature"
	"texls/internal/syntax"
)

type completionRequest = feature.Request[protocol.CompletionParams]

// completeLatexCommands contributes command completion inside LaTeX
// documents: the kernel, every component the document imports, and the
// commands the project defines itself.
func completeLatexCommands(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	if req.Document().LatexTree() == nil {
		return nil
	}
	edit, ok := commandContext(req.Document(), req.Params.Position)
	if !ok {
		return nil
	}

	items := componentCommandItems(req, edit)
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.Label] = true
	}
	for _, doc := range req.Related() {
		tree := doc.LatexTree()
		if tree == nil {
			continue
		}
		for _, name := range tree.UserCommands {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			items = append(items, commandItem(name, "user-defined", edit))
		}
	}
	return items
}

// componentCommandItems builds the command items contributed by the
// component database, deduplicated by name with first-seen precedence.
func componentCommandItems(req *completionRequest, edit protocol.Range) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	for _, comp := range component.Load().Related(req.Related()) {
		detail := comp.Name()
		if detail == "" {
			detail = "built-in"
		}
		for _, cmd := range comp.Commands {
			if seen[cmd.Name] {
				continue
			}
			seen[cmd.Name] = true
			items = append(items, commandItem(cmd.Name, detail, edit))
		}
	}
	return items
}

func commandItem(name, detail string, edit protocol.Range) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:    name,
		Kind:     completionKind(protocol.CompletionItemKindFunction),
		Detail:   strPtr(detail),
		TextEdit: &protocol.TextEdit{Range: edit, NewText: name},
		Data:     itemData{Kind: itemKindCommand, Name: name},
	}
}

// completeEnvironments contributes environment names inside the argument
// of \begin and \end.
func completeEnvironments(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	if req.Document().LatexTree() == nil {
		return nil
	}
	arg := findArgumentContext(req.Document().Text, req.Params.Position)
	if arg == nil || (arg.Command != "begin" && arg.Command != "end") {
		return nil
	}

	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	add := func(name, detail string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		items = append(items, protocol.CompletionItem{
			Label:    name,
			Kind:     completionKind(protocol.CompletionItemKindEnum),
			Detail:   strPtr(detail),
			TextEdit: &protocol.TextEdit{Range: arg.Range, NewText: name},
			Data:     itemData{Kind: itemKindEnvironment, Name: name},
		})
	}
	for _, comp := range component.Load().Related(req.Related()) {
		detail := comp.Name()
		if detail == "" {
			detail = "built-in"
		}
		for _, env := range comp.Environments {
			add(env, detail)
		}
	}
	for _, doc := range req.Related() {
		if tree := doc.LatexTree(); tree != nil {
			for _, env := range tree.UserEnvs {
				add(env, "user-defined")
			}
		}
	}
	return items
}

// completeCitations contributes bibliography keys inside citation
// commands, drawn from every related BibTeX document.
func completeCitations(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	if req.Document().LatexTree() == nil {
		return nil
	}
	arg := findArgumentContext(req.Document().Text, req.Params.Position)
	if arg == nil || !syntax.IsCitationCommand(arg.Command) {
		return nil
	}

	var items []protocol.CompletionItem
	for _, doc := range req.Related() {
		tree := doc.BibtexTree()
		if tree == nil {
			continue
		}
		for i := range tree.Entries {
			entry := &tree.Entries[i]
			if entry.IsComment() || entry.Key.Text == "" {
				continue
			}
			items = append(items, protocol.CompletionItem{
				Label:    entry.Key.Text,
				Kind:     completionKind(protocol.CompletionItemKindReference),
				Detail:   strPtr(strings.TrimPrefix(entry.Type.Text, "@")),
				TextEdit: &protocol.TextEdit{Range: arg.Range, NewText: entry.Key.Text},
				Data:     itemData{Kind: itemKindCitation, URI: doc.URI, Key: entry.Key.Text},
			})
		}
	}
	return items
}

// completeLabelReferences contributes defined label names inside \ref-style
// commands.
func completeLabelReferences(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	if req.Document().LatexTree() == nil {
		return nil
	}
	arg := findArgumentContext(req.Document().Text, req.Params.Position)
	if arg == nil || !syntax.IsLabelReferenceCommand(arg.Command) {
		return nil
	}

	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	for _, doc := range req.Related() {
		tree := doc.LatexTree()
		if tree == nil {
			continue
		}
		for _, label := range tree.Labels {
			if label.Kind != syntax.LabelDefinition || seen[label.Name.Text] {
				continue
			}
			seen[label.Name.Text] = true
			items = append(items, protocol.CompletionItem{
				Label:    label.Name.Text,
				Kind:     completionKind(protocol.CompletionItemKindReference),
				TextEdit: &protocol.TextEdit{Range: arg.Range, NewText: label.Name.Text},
				Data:     itemData{Kind: itemKindLabel, Name: label.Name.Text},
			})
		}
	}
	return items
}

// completeIncludePaths contributes workspace files inside \include-style
// commands by listing the directory the typed prefix points into.
func completeIncludePaths(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	doc := req.Document()
	if doc.LatexTree() == nil || doc.Path == "" {
		return nil
	}
	arg := findArgumentContext(doc.Text, req.Params.Position)
	if arg == nil {
		return nil
	}
	kind, ok := syntax.IncludeCommandKind(arg.Command)
	if !ok || kind == syntax.IncludePackage || kind == syntax.IncludeClass {
		return nil
	}

	// Only the last path segment is replaced; earlier segments narrow the
	// directory being listed.
	segment := arg.Prefix
	dir := filepath.Dir(doc.Path)
	if idx := strings.LastIndexByte(arg.Prefix, '/'); idx >= 0 {
		segment = arg.Prefix[idx+1:]
		dir = filepath.Join(dir, filepath.FromSlash(arg.Prefix[:idx]))
	}
	edit := arg.Range
	edit.Start.Character = edit.End.Character - protocol.UInteger(len([]rune(segment)))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var items []protocol.CompletionItem
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			items = append(items, protocol.CompletionItem{
				Label:    name + "/",
				Kind:     completionKind(protocol.CompletionItemKindFolder),
				TextEdit: &protocol.TextEdit{Range: edit, NewText: name + "/"},
			})
			continue
		}
		if !hasExtension(name, kind.Extensions()) {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label:    name,
			Kind:     completionKind(protocol.CompletionItemKindFile),
			TextEdit: &protocol.TextEdit{Range: edit, NewText: name},
			Data:     itemData{Kind: itemKindFile, Name: name},
		})
	}
	return items
}

func hasExtension(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, candidate := range extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// completeImports contributes known package and class names inside
// \usepackage and \documentclass.
func completeImports(ctx context.Context, req *completionRequest) []protocol.CompletionItem {
	if req.Document().LatexTree() == nil {
		return nil
	}
	arg := findArgumentContext(req.Document().Text, req.Params.Position)
	if arg == nil {
		return nil
	}
	kind, ok := syntax.IncludeCommandKind(arg.Command)
	if !ok || (kind != syntax.IncludePackage && kind != syntax.IncludeClass) {
		return nil
	}

	wantExt := ".sty"
	dataKind := itemKindPackage
	itemKind := protocol.CompletionItemKindModule
	if kind == syntax.IncludeClass {
		wantExt = ".cls"
		dataKind = itemKindClass
		itemKind = protocol.CompletionItemKindClass
	}

	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	for _, comp := range component.Load().Components {
		for _, fileName := range comp.FileNames {
			if filepath.Ext(fileName) != wantExt {
				continue
			}
			name := strings.TrimSuffix(fileName, wantExt)
			if seen[name] {
				continue
			}
			seen[name] = true
			items = append(items, protocol.CompletionItem{
				Label:    name,
				Kind:     completionKind(itemKind),
				TextEdit: &protocol.TextEdit{Range: arg.Range, NewText: name},
				Data:     itemData{Kind: dataKind, Name: name},
			})
		}
	}
	return items
}
