package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/action"
	"texls/internal/syntax"
	"texls/internal/workspace"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestBeforeMessageDetectsChildren(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "main.tex", `\input{chapter}`)
	chapterPath := writeFile(t, dir, "chapter.tex", `\input{section}`)
	sectionPath := writeFile(t, dir, "section.tex", "text")

	srv := New()
	srv.Workspace().Open(workspace.PathToURI(mainPath), `\input{chapter}`, syntax.LanguageLatex, srv.Options())

	srv.BeforeMessage()

	// Discovery runs to a fixpoint: the chapter pulls in the section.
	snapshot := srv.Workspace().Get()
	assert.NotNil(t, snapshot.FindByPath(chapterPath))
	assert.NotNil(t, snapshot.FindByPath(sectionPath))
}

func TestBeforeMessageStopsOnIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	aPath := writeFile(t, dir, "a.tex", `\input{b}`)
	bPath := writeFile(t, dir, "b.tex", `\input{a}`)

	srv := New()
	srv.Workspace().Open(workspace.PathToURI(aPath), `\input{b}`, syntax.LanguageLatex, srv.Options())

	// b includes a back; discovery must load both and terminate.
	srv.BeforeMessage()

	snapshot := srv.Workspace().Get()
	assert.NotNil(t, snapshot.FindByPath(aPath))
	assert.NotNil(t, snapshot.FindByPath(bPath))
	assert.Len(t, snapshot.Documents, 2)
}

func TestBeforeMessageIgnoresMissingChildren(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "main.tex", `\input{missing}`)

	srv := New()
	srv.Workspace().Open(workspace.PathToURI(mainPath), `\input{missing}`, syntax.LanguageLatex, srv.Options())

	srv.BeforeMessage()

	assert.Len(t, srv.Workspace().Get().Documents, 1)
}

func TestBeforeMessageReloadsStale(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.tex", "old")

	srv := New()
	_, err := srv.Workspace().Load(path, srv.Options())
	require.NoError(t, err)

	writeFile(t, dir, "main.tex", "new")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	srv.BeforeMessage()

	doc := srv.Workspace().Get().FindByPath(path)
	require.NotNil(t, doc)
	assert.Equal(t, "new", doc.Text)
}

func TestDetectRootFindsParentAbove(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeFile(t, dir, "main.tex", `\input{sub/chapter}`)
	chapterPath := writeFile(t, dir, "sub/chapter.tex", "text")

	srv := New()
	_, err := srv.Workspace().Load(chapterPath, srv.Options())
	require.NoError(t, err)

	uri := workspace.PathToURI(chapterPath)
	srv.DetectRoot(uri)

	parent := srv.Workspace().Get().FindParent(uri, srv.Options())
	require.NotNil(t, parent)
	assert.Equal(t, mainPath, parent.Path)
}

func TestExecuteDrainsActionQueue(t *testing.T) {
	srv := New()
	srv.Actions().Push(action.PublishDiagnostics{})

	result, err := Execute(srv, nil, func() (string, error) {
		srv.Actions().Push(action.PublishDiagnostics{})
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Empty(t, srv.Actions().Take())
}

func TestSaveBuildDoesNotBlockPipeline(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.tex", `\documentclass{article}`)

	srv := New()
	var capabilities protocol.ClientCapabilities
	raw := `{"workspace": {"didChangeConfiguration": {"dynamicRegistration": false}}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &capabilities))
	srv.SetClientCapabilities(&capabilities)

	settings := map[string]any{
		"latex": map[string]any{
			"build": map[string]any{
				"onSave":     true,
				"executable": "sh",
				"args":       []string{"-c", "sleep 2"},
			},
		},
	}
	srv.Actions().Push(action.UpdateConfiguration{Settings: settings})
	srv.AfterMessage(nil)

	_, err := srv.Workspace().Load(path, srv.Options())
	require.NoError(t, err)

	srv.Actions().Push(action.Build{URI: workspace.PathToURI(path)})
	start := time.Now()
	srv.AfterMessage(nil)

	// The build tool sleeps for two seconds; dispatching the save-triggered
	// build must not wait for it to exit.
	assert.Less(t, time.Since(start), time.Second)
}

func TestUpdateConfigurationTakesEffect(t *testing.T) {
	srv := New()

	var capabilities protocol.ClientCapabilities
	raw := `{"workspace": {"didChangeConfiguration": {"dynamicRegistration": false}}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &capabilities))
	srv.SetClientCapabilities(&capabilities)

	settings := map[string]any{
		"latex": map[string]any{
			"build": map[string]any{"onSave": true},
		},
	}
	srv.Actions().Push(action.UpdateConfiguration{Settings: settings})
	srv.AfterMessage(nil)

	assert.True(t, srv.Options().LaTeX.Build.OnSave)
}
