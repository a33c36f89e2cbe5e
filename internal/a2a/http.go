package a2a

import (
	"bufio"
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/store"
)

// RegisterRoutes mounts the A2A JSON-RPC endpoint, the Agent Card, and the
// per-task progress stream (spec.md §4.6/§4.7).
func RegisterRoutes(app *fiber.App, server *Server, authn *auth.Authenticator, tasks store.A2ATaskRepository) {
	app.Get("/.well-known/agent.json", func(c *fiber.Ctx) error {
		return c.JSON(Card())
	})
	app.Post("/a2a/jsonrpc", handleJSONRPC(server, authn))
	app.Get("/a2a/tasks/:task_id/stream", handleTaskStream(tasks, authn))
}

func handleJSONRPC(server *Server, authn *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := authn.Authenticate(c.Context(), c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(newErrorResponse(nil, CodeInvalidRequest, "authentication failed", nil))
		}

		var req Request
		if jsonErr := json.Unmarshal(c.Body(), &req); jsonErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(newErrorResponse(nil, CodeParseError, "invalid JSON-RPC payload: "+jsonErr.Error(), nil))
		}

		resp := server.Handle(req, *result)
		return c.JSON(resp)
	}
}

// handleTaskStream polls the task row and emits an SSE frame on every
// progress change plus a final frame on terminal status, matching the
// polling-to-push bridge the teacher's SSE layer otherwise does with its
// own in-memory fan-out (this endpoint is task-scoped, not channel-scoped,
// so it reads the task repository directly instead of going through C7).
// The caller must own the task (403 otherwise), and the stream opens with
// a connection event before any task frame.
func handleTaskStream(tasks store.A2ATaskRepository, authn *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := authn.Authenticate(c.Context(), c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString("authentication failed")
		}
		taskID := c.Params("task_id")
		owned, err := tasks.GetTask(c.Context(), taskID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).SendString("task not found")
		}
		if owned.ClientID != result.Principal.UserID {
			return c.Status(fiber.StatusForbidden).SendString("subject does not match task owner")
		}

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			_, _ = w.WriteString("event: connection\ndata: {\"status\":\"connected\"}\n\n")
			_ = w.Flush()
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			var lastProgress float64 = -1
			var lastStatus store.A2ATaskStatus

			for range ticker.C {
				task, err := tasks.GetTask(context.Background(), taskID)
				if err != nil {
					writeTaskEvent(w, map[string]any{"error": "task not found"})
					_ = w.Flush()
					return
				}
				if task.Progress == lastProgress && task.Status == lastStatus {
					continue
				}
				lastProgress, lastStatus = task.Progress, task.Status
				writeTaskEvent(w, task)
				_ = w.Flush()
				if task.Status.IsTerminal() {
					return
				}
			}
		})
		return nil
	}
}

func writeTaskEvent(w *bufio.Writer, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		logx.WithError(err).Warn("a2a: failed to marshal task stream event")
		return
	}
	_, _ = w.WriteString("event: message\ndata: ")
	_, _ = w.Write(b)
	_, _ = w.WriteString("\n\n")
}
