package mcp

import (
	"bufio"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/tools"
)

// RegisterRoutes mounts the MCP JSON-RPC endpoint on app, guarded by
// authn (spec.md §4.6 "streamable HTTP"). A plain client gets one JSON
// response; a client that sends `Accept: text/event-stream` gets
// notifications/progress frames streamed ahead of the final response,
// matching the MCP streamable-HTTP transport.
func RegisterRoutes(app *fiber.App, server *Server, authn *auth.Authenticator) {
	app.Post("/mcp", handleMCP(server, authn))
}

func handleMCP(server *Server, authn *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := authn.Authenticate(c.Context(), c.Get("Authorization"))
		if err != nil {
			resp := authFailureToRPC(nil, err)
			return c.Status(fiber.StatusUnauthorized).JSON(resp)
		}

		var req Request
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(nil, CodeParseError, "invalid JSON-RPC payload: "+err.Error(), nil))
		}

		wantsStream := strings.Contains(c.Get("Accept"), "text/event-stream")
		if !wantsStream {
			sess := session{auth: *result, cancellation: auth.NewCancellationToken(nil), progress: tools.NoopProgress{}, sampling: server.sampling}
			resp := server.Handle(req, sess)
			if resp == nil {
				return c.SendStatus(fiber.StatusNoContent)
			}
			return c.JSON(resp)
		}

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			events := make(chan Notification, 16)
			sess := session{
				auth:         *result,
				cancellation: auth.NewCancellationToken(nil),
				progress:     &streamingProgress{events: events},
				sampling:     server.sampling,
			}
			done := make(chan struct{})
			var resp *Response
			go func() {
				resp = server.Handle(req, sess)
				close(events)
				close(done)
			}()
			for note := range events {
				writeSSE(w, note)
				_ = w.Flush()
			}
			<-done
			if resp != nil {
				writeSSEResult(w, *resp)
				_ = w.Flush()
			}
		})
		return nil
	}
}

func writeSSE(w *bufio.Writer, note Notification) {
	b, err := json.Marshal(note)
	if err != nil {
		logx.WithError(err).Warn("mcp: failed to marshal progress notification")
		return
	}
	_, _ = w.WriteString("event: message\ndata: ")
	_, _ = w.Write(b)
	_, _ = w.WriteString("\n\n")
}

func writeSSEResult(w *bufio.Writer, resp Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		logx.WithError(err).Warn("mcp: failed to marshal final response")
		return
	}
	_, _ = w.WriteString("event: message\ndata: ")
	_, _ = w.Write(b)
	_, _ = w.WriteString("\n\n")
}

// streamingProgress publishes each report as a notifications/progress
// JSON-RPC notification on the SSE channel (spec.md §4.6).
type streamingProgress struct {
	events chan Notification
}

func (p *streamingProgress) Report(phase tools.ProgressPhase, fraction float64, message string) {
	p.events <- Notification{
		JSONRPC: "2.0",
		Method:  "notifications/progress",
		Params:  map[string]any{"phase": phase, "progress": fraction, "message": message},
	}
}
