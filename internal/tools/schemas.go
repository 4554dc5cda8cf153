// Package tools defines the tool names, request schemas and the result
// envelope shared by every leaveoff MCP tool.
package tools

const (
	// ToolLeaveOff is the name of the leave_off MCP tool
	ToolLeaveOff = "leave_off"

	// ToolPickUp is the name of the pick_up MCP tool
	ToolPickUp = "pick_up"

	// ToolRemoveContextItem is the name of the remove_context_item MCP tool
	ToolRemoveContextItem = "remove_context_item"

	// ToolListContextItems is the name of the list_context_items MCP tool
	ToolListContextItems = "list_context_items"

	// ToolLoadLatestContextItem is the name of the load_latest_context_item MCP tool
	ToolLoadLatestContextItem = "load_latest_context_item"
)

// Names lists every tool in registration order.
var Names = []string{
	ToolLeaveOff,
	ToolPickUp,
	ToolRemoveContextItem,
	ToolListContextItems,
	ToolLoadLatestContextItem,
}

// ContentTypeText is the only content type leaveoff emits.
const ContentTypeText = "text"

// LeaveOffRequest defines the input schema for the leave_off tool
type LeaveOffRequest struct {
	// Context is the text to save
	Context string `json:"context" description:"Context, instructions or task state to save for later" required:"true"`
}

// PickUpRequest defines the input schema for the pick_up tool
type PickUpRequest struct {
	// ID is the identifier returned by leave_off
	ID string `json:"id" description:"Identifier of the saved context item" required:"true"`
}

// RemoveContextItemRequest defines the input schema for the remove_context_item tool
type RemoveContextItemRequest struct {
	// ID is the identifier of the item to delete
	ID string `json:"id" description:"Identifier of the context item to remove" required:"true"`
}

// ListContextItemsRequest defines the (empty) input schema for list_context_items
type ListContextItemsRequest struct{}

// LoadLatestContextItemRequest defines the (empty) input schema for load_latest_context_item
type LoadLatestContextItemRequest struct{}

// Content is a single MCP content block.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the uniform envelope returned by every tool.
type Result struct {
	// Content holds the human-readable output
	Content []Content `json:"content"`

	// Success reports whether the operation completed
	Success bool `json:"success"`

	// Error contains the failure message when Success is false
	Error string `json:"error,omitempty"`

	// Code classifies a failure (VALIDATION_ERROR, NOT_FOUND, ...)
	Code string `json:"code,omitempty"`

	// ID is set by leave_off to the identifier of the new item
	ID string `json:"id,omitempty"`
}

// Text returns the text of the first content block, or "".
func (r Result) Text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}

// Map renders the envelope in the shape MCP clients receive: content plus
// isError, with the envelope fields alongside.
func (r Result) Map() map[string]interface{} {
	content := make([]map[string]interface{}, 0, len(r.Content))
	for _, c := range r.Content {
		content = append(content, map[string]interface{}{"type": c.Type, "text": c.Text})
	}

	m := map[string]interface{}{
		"content": content,
		"isError": !r.Success,
		"success": r.Success,
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	if r.Code != "" {
		m["code"] = r.Code
	}
	if r.ID != "" {
		m["id"] = r.ID
	}
	return m
}

// Success builds a successful envelope carrying text.
func Success(text string) Result {
	return Result{
		Content: []Content{{Type: ContentTypeText, Text: text}},
		Success: true,
	}
}

// Failure builds a failed envelope. The content text is prefixed with
// "Error: " and the raw message is kept in Error.
func Failure(message string) Result {
	return Result{
		Content: []Content{{Type: ContentTypeText, Text: "Error: " + message}},
		Success: false,
		Error:   message,
	}
}
