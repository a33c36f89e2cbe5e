package a2a

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/store"
	"github.com/pierre-fitness/pierre-server/internal/tools"
)

// Server implements the A2A JSON-RPC methods, sharing C5's Executor with
// the MCP adapter so both protocols dispatch through the same tool table
// (spec.md §4.6).
type Server struct {
	executor *tools.Executor
	store    store.A2ATaskRepository

	mu      sync.Mutex
	cancels map[string]chan struct{}
}

func NewServer(executor *tools.Executor, st store.A2ATaskRepository) *Server {
	return &Server{executor: executor, store: st, cancels: make(map[string]chan struct{})}
}

type messagePayload struct {
	ToolName   string          `json:"tool_name"`
	Parameters json.RawMessage `json:"parameters"`
}

type messageSendParams struct {
	Message messagePayload `json:"message"`
}

// Handle dispatches one JSON-RPC request against an authenticated
// session, mirroring the MCP adapter's session-threading pattern.
func (s *Server) Handle(req Request, result auth.AuthResult) Response {
	switch req.Method {
	case "message/send", "message/stream":
		return s.messageSend(req, result)
	case "tasks/get":
		return s.tasksGet(req)
	case "tasks/cancel":
		return s.tasksCancel(req)
	case "agent.getAuthenticatedExtendedCard":
		resp := newResponse(req.ID, ExtendedCard(result))
		return resp
	default:
		return newErrorResponse(req.ID, CodeMethodNotFound, "unknown method: "+req.Method, nil)
	}
}

// messageSend allocates an A2ATask row and runs the tool call
// asynchronously, returning the task id immediately (spec.md §4.6
// "long-running calls allocate an A2ATask row... progress is streamed on
// /a2a/tasks/{task_id}/stream").
func (s *Server) messageSend(req Request, result auth.AuthResult) Response {
	var p messageSendParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return newErrorResponse(req.ID, CodeInvalidParams, "invalid message/send params: "+err.Error(), nil)
	}
	if p.Message.ToolName == "" {
		return newErrorResponse(req.ID, CodeInvalidParams, "message.tool_name is required", nil)
	}

	taskID := uuid.NewString()
	task := store.A2ATask{
		TaskID:    taskID,
		ClientID:  result.Principal.UserID,
		Status:    store.A2ATaskPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.CreateTask(context.Background(), task); err != nil {
		return newErrorResponse(req.ID, CodeInternalError, "failed to allocate task: "+err.Error(), nil)
	}

	cancelCh := make(chan struct{})
	s.mu.Lock()
	s.cancels[taskID] = cancelCh
	s.mu.Unlock()

	go s.runTask(taskID, p.Message, result, cancelCh)

	return newResponse(req.ID, map[string]any{"task_id": taskID, "status": store.A2ATaskPending})
}

func (s *Server) runTask(taskID string, msg messagePayload, result auth.AuthResult, cancelCh chan struct{}) {
	ctx := context.Background()
	_ = s.store.UpdateTaskProgress(ctx, taskID, 0.0)

	uresp := s.executor.Execute(tools.UniversalRequest{
		ToolName:     msg.ToolName,
		Parameters:   msg.Parameters,
		UserID:       result.Principal.UserID,
		TenantID:     result.TenantID,
		Auth:         result,
		Cancellation: auth.NewCancellationToken(cancelCh),
		Progress:     &taskProgress{store: s.store, taskID: taskID},
	})

	s.mu.Lock()
	delete(s.cancels, taskID)
	s.mu.Unlock()

	if uresp.IsError {
		msg := string(uresp.Result)
		if err := s.store.TransitionTask(ctx, taskID, store.A2ATaskFailed, nil, &msg); err != nil {
			logx.WithError(err).Warn("a2a: failed to transition task to failed")
		}
		return
	}
	if err := s.store.TransitionTask(ctx, taskID, store.A2ATaskSucceeded, uresp.Result, nil); err != nil {
		logx.WithError(err).Warn("a2a: failed to transition task to succeeded")
	}
}

type taskProgress struct {
	store  store.A2ATaskRepository
	taskID string
}

func (p *taskProgress) Report(phase tools.ProgressPhase, fraction float64, message string) {
	_ = p.store.UpdateTaskProgress(context.Background(), p.taskID, fraction)
}

func (s *Server) tasksGet(req Request) Response {
	var p struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil || p.TaskID == "" {
		return newErrorResponse(req.ID, CodeInvalidParams, "task_id is required", nil)
	}
	task, err := s.store.GetTask(context.Background(), p.TaskID)
	if err != nil {
		return newErrorResponse(req.ID, CodeInvalidParams, "task not found", nil)
	}
	return newResponse(req.ID, task)
}

// tasksCancel closes the task's cancellation channel so the next checkpoint
// inside the running handler observes it (spec.md §9's parameter-passed
// CancellationToken).
func (s *Server) tasksCancel(req Request) Response {
	var p struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil || p.TaskID == "" {
		return newErrorResponse(req.ID, CodeInvalidParams, "task_id is required", nil)
	}

	s.mu.Lock()
	ch, ok := s.cancels[p.TaskID]
	if ok {
		delete(s.cancels, p.TaskID)
	}
	s.mu.Unlock()

	if ok {
		close(ch)
	}
	msg := "cancelled by client"
	if err := s.store.TransitionTask(context.Background(), p.TaskID, store.A2ATaskCancelled, nil, &msg); err != nil {
		return newErrorResponse(req.ID, CodeInternalError, "failed to cancel task: "+err.Error(), nil)
	}
	return newResponse(req.ID, map[string]any{"task_id": p.TaskID, "status": store.A2ATaskCancelled})
}

// ExtendedCard is the authenticated variant of the Agent Card (spec.md §4.6
// "agent.getAuthenticatedExtendedCard"): the public card with an
// "(authenticated session)" suffix on its description. It carries nothing
// specific to the caller; result is not read.
func ExtendedCard(result auth.AuthResult) AgentCard {
	card := Card()
	card.Description = card.Description + " (authenticated session)"
	return card
}
