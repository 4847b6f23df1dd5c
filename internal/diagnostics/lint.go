package diagnostics

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var log = commonlog.GetLogger("texls.lint")

// chktex emits one finding per line with -f%l:%c:%d:%k:%n:%m.
var chktexLine = regexp.MustCompile(`^(\d+):(\d+):(\d+):(\w+):(\d+):(.*)$`)

// Lint runs chktex over the given document text and parses its findings.
// A missing or failing linter degrades to no findings; the linter being
// absent is a toolchain concern, not a document error.
func Lint(ctx context.Context, text string) []protocol.Diagnostic {
	if _, err := exec.LookPath("chktex"); err != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, "chktex", "-I0", "-f%l:%c:%d:%k:%n:%m\n")
	cmd.Stdin = strings.NewReader(text)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		// chktex exits non-zero when it finds problems; only a failure to
		// produce output is treated as an execution error.
		if out.Len() == 0 {
			log.Debugf("chktex failed: %v", err)
			return nil
		}
	}
	return parseChktexOutput(&out)
}

func parseChktexOutput(out *bytes.Buffer) []protocol.Diagnostic {
	var items []protocol.Diagnostic
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		match := chktexLine.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		line, _ := strconv.Atoi(match[1])
		col, _ := strconv.Atoi(match[2])
		length, _ := strconv.Atoi(match[3])
		if line > 0 {
			line--
		}
		if col > 0 {
			col--
		}

		severity := protocol.DiagnosticSeverityWarning
		if match[4] == "Error" {
			severity = protocol.DiagnosticSeverityError
		}
		source := "chktex"
		code := protocol.IntegerOrString{Value: match[5]}
		items = append(items, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)},
				End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col + length)},
			},
			Severity: &severity,
			Source:   &source,
			Code:     &code,
			Message:  strings.TrimSpace(match[6]),
		})
	}
	return items
}
