package a2a

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/BerylCAtieno/kicks-match/internal/agent"
	"github.com/BerylCAtieno/kicks-match/internal/analyzer"
	"github.com/BerylCAtieno/kicks-match/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShoeAnalyzer is the analysis capability exposed to agents.
type ShoeAnalyzer interface {
	Analyze(ctx context.Context, img analyzer.Image) (*models.ShoeDescription, error)
}

// directMessageID answers messages sent without a JSON-RPC id.
const directMessageID = "direct-message"

type A2AHandler struct {
	analyzer     ShoeAnalyzer
	maxBodyBytes int64
}

func NewA2AHandler(shoeAnalyzer ShoeAnalyzer, maxBodyBytes int64) *A2AHandler {
	return &A2AHandler{
		analyzer:     shoeAnalyzer,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleAnalyze processes A2A JSON-RPC messages carrying a shoe photo. A bare
// message without the JSON-RPC wrapper is accepted when it carries parts.
func (h *A2AHandler) HandleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var rpcReq JSONRPCRequest
	if err := c.ShouldBindBodyWithJSON(&rpcReq); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Printf("ERROR: Request body exceeds %d bytes", tooLarge.Limit)
			h.sendErrorResponse(c, nil, fmt.Sprintf("Request too large: body exceeds %d bytes", tooLarge.Limit), CodeInvalidRequest)
			return
		}
		log.Printf("ERROR: Failed to decode request as JSON-RPC: %v", err)
		h.sendErrorResponse(c, nil, "Parse error: invalid JSON-RPC request", CodeParseError)
		return
	}

	log.Printf("STATE: JSON-RPC request id=%v method=%s params=%d bytes", rpcReq.ID, rpcReq.Method, len(rpcReq.Params))

	if rpcReq.JSONRPC == "" && rpcReq.Method == "" {
		var msgParams MessageParams
		if err := c.ShouldBindBodyWithJSON(&msgParams); err == nil && len(msgParams.Message.Parts) > 0 {
			log.Printf("STATE: Handling direct message without JSON-RPC wrapper")
			h.handleTask(c, directMessageID, msgParams)
			return
		}
	}

	if rpcReq.JSONRPC != "2.0" {
		log.Printf("WARN: Invalid JSON-RPC version: %s", rpcReq.JSONRPC)
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "message/send", "agent/task":
		var msgParams MessageParams
		if err := json.Unmarshal(rpcReq.Params, &msgParams); err != nil {
			log.Printf("ERROR: Failed to unmarshal params: %v", err)
			h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
			return
		}
		h.handleTask(c, rpcReq.ID, msgParams)
	default:
		log.Printf("ERROR: Unknown method: %s", rpcReq.Method)
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

func (h *A2AHandler) handleTask(c *gin.Context, id interface{}, msgParams MessageParams) {
	taskID := msgParams.Message.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}
	contextID := msgParams.Message.ContextID
	if contextID == "" {
		contextID = uuid.New().String()
	}

	img, found, err := extractImage(msgParams.Message)
	if err != nil {
		log.Printf("ERROR: Invalid file part: %v", err)
		h.sendErrorResponse(c, id, fmt.Sprintf("Invalid parameters: %v", err), CodeInvalidParams)
		return
	}
	if !found {
		log.Printf("WARN: No image found in message")
		result := h.createTaskResult(taskID, contextID, StateInputRequired,
			"Please attach a photo of a shoe (PNG or JPEG) as a file part.")
		h.sendSuccessResponse(c, id, result)
		return
	}

	log.Printf("STATE: Analyzing %s (%d bytes, %s) for task %s", img.Filename, img.Size, img.MIMEType, taskID)

	shoe, err := h.analyzer.Analyze(c.Request.Context(), img)
	if err != nil {
		if errors.Is(err, analyzer.ErrMissingAPIKey) {
			log.Printf("ERROR: %v", err)
			h.sendErrorResponse(c, id, fmt.Sprintf("Internal error: %v", err), CodeInternalError)
			return
		}

		log.Printf("ERROR: Failed to analyze shoe: %v", err)
		result := h.createTaskResult(taskID, contextID, StateFailed,
			fmt.Sprintf("Failed to analyze shoe: %v", err))
		h.sendSuccessResponse(c, id, result)
		return
	}

	log.Printf("STATE: Analysis succeeded. Sending StateCompleted TaskResult.")
	h.sendSuccessResponse(c, id, h.createSuccessTaskResult(taskID, contextID, shoe))
}

// ServeAgentCard serves the embedded agent card.
func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	if err := agent.LoadAgentCard(); err != nil {
		log.Printf("ERROR: Error loading agent card: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Agent card not available"})
		return
	}

	c.Data(http.StatusOK, "application/json", agent.AgentCardData)
}

// extractImage returns the first file part with inline bytes.
func extractImage(msg A2AMessage) (analyzer.Image, bool, error) {
	for _, part := range msg.Parts {
		if part.Kind != PartFile || part.File == nil || part.File.Bytes == "" {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(part.File.Bytes))
		if err != nil {
			return analyzer.Image{}, false, fmt.Errorf("file bytes are not valid base64: %w", err)
		}

		return analyzer.NewImage(data, part.File.MimeType, part.File.Name), true, nil
	}

	return analyzer.Image{}, false, nil
}

func (h *A2AHandler) createSuccessTaskResult(taskID, contextID string, shoe *models.ShoeDescription) TaskResult {
	responseText := formatShoeResponse(shoe)

	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     StateCompleted,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.New().String(),
				TaskID:    taskID,
				ContextID: contextID,
				Parts: []MessagePart{
					TextPart(responseText),
				},
			},
		},
		Artifacts: []Artifact{
			{
				ArtifactID: uuid.New().String(),
				Name:       "Shoe Description",
				Parts: []MessagePart{
					TextPart(responseText),
					DataPart(shoe),
				},
			},
		},
	}
}

func (h *A2AHandler) createTaskResult(taskID, contextID, state, text string) TaskResult {
	return TaskResult{
		ID:        taskID,
		ContextID: contextID,
		Kind:      "task",
		Status: TaskStatus{
			State:     state,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.New().String(),
				TaskID:    taskID,
				ContextID: contextID,
				Parts: []MessagePart{
					TextPart(text),
				},
			},
		},
	}
}

func formatShoeResponse(shoe *models.ShoeDescription) string {
	var builder strings.Builder

	summary := shoe.ShortTextSummary
	if summary == "" {
		summary = "Shoe summary not provided"
	}
	builder.WriteString(fmt.Sprintf("# %s\n\n", summary))

	if shoe.BrandGuess != "" || shoe.ModelGuess != "" {
		builder.WriteString(fmt.Sprintf("**Guess:** %s\n", strings.TrimSpace(shoe.BrandGuess+" "+shoe.ModelGuess)))
	}

	writeColors(&builder, "Dominant Colors", shoe.DominantColors)
	writeColors(&builder, "Accent Colors", shoe.AccentColors)

	if len(shoe.Materials) > 0 {
		builder.WriteString(fmt.Sprintf("\n**Materials:** %s\n", strings.Join(shoe.Materials, ", ")))
	}
	if len(shoe.StyleTags) > 0 {
		builder.WriteString(fmt.Sprintf("\n**Style:** %s\n", strings.Join(shoe.StyleTags, ", ")))
	}

	return builder.String()
}

func writeColors(builder *strings.Builder, title string, colors []models.Color) {
	if len(colors) == 0 {
		return
	}

	builder.WriteString(fmt.Sprintf("\n**%s:**\n", title))
	for _, c := range colors {
		if c.Ratio != nil {
			builder.WriteString(fmt.Sprintf("- %s (%s) %.0f%%\n", c.Name, c.Hex, *c.Ratio*100))
		} else {
			builder.WriteString(fmt.Sprintf("- %s (%s)\n", c.Name, c.Hex))
		}
	}
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id interface{}, result interface{}) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (h *A2AHandler) sendErrorResponse(c *gin.Context, id interface{}, message string, code int) {
	log.Printf("=== SENDING RPC ERROR RESPONSE (Status 200) === Code: %d, Message: %s", code, message)

	c.JSON(http.StatusOK, JSONRPCResponse{ // JSON-RPC errors are sent with 200 OK
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
		},
	})
}
