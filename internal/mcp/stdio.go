package mcp

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/tools"
)

// RunStdio serves one MCP session over newline-delimited JSON-RPC on r/w,
// the transport spec.md §6 names alongside HTTP for local, single-user
// MCP clients. result carries the pre-resolved credential for the process
// (spec.md's stdio transport is inherently single-tenant per process: a
// local MCP client is launched already scoped to one user/API key).
func RunStdio(r io.Reader, w io.Writer, server *Server, result auth.AuthResult) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = encoder.Encode(newErrorResponse(nil, CodeParseError, "invalid JSON-RPC payload: "+err.Error(), nil))
			continue
		}

		sess := session{
			auth:         result,
			cancellation: auth.NewCancellationToken(nil),
			progress:     &stdioProgress{encoder: encoder},
			sampling:     server.sampling,
		}
		resp := server.Handle(req, sess)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			logx.WithError(err).Warn("mcp: failed to write stdio response")
			return err
		}
	}
	return scanner.Err()
}

// stdioProgress writes each progress report as its own newline-delimited
// notifications/progress JSON-RPC notification, interleaved with the
// eventual response on the same stream.
type stdioProgress struct {
	encoder *json.Encoder
}

func (p *stdioProgress) Report(phase tools.ProgressPhase, fraction float64, message string) {
	_ = p.encoder.Encode(Notification{
		JSONRPC: "2.0",
		Method:  "notifications/progress",
		Params:  map[string]any{"phase": phase, "progress": fraction, "message": message},
	})
}
