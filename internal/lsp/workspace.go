package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"texls/internal/action"
)

// DidChangeConfiguration handles the workspace/didChangeConfiguration
// notification. The settings take effect between messages, so handlers
// never observe a half-applied configuration.
func DidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv := serverInstance
	if srv == nil {
		return nil
	}
	srv.Actions().Push(action.UpdateConfiguration{Settings: params.Settings})
	return nil
}

// WorkDoneProgressCancel handles window/workDoneProgress/cancel. The only
// progress the server reports is building, so a cancel aborts the build
// identified by the token.
func WorkDoneProgressCancel(ctx *glsp.Context, params *protocol.WorkDoneProgressCancelParams) error {
	srv := serverInstance
	if srv == nil {
		return nil
	}
	token := progressTokenString(params.Token)
	if token == "" {
		return nil
	}
	srv.Actions().Push(action.CancelBuild{Token: token})
	return nil
}
