package server

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/leaveoff/internal/prompts"
	"github.com/localrivet/leaveoff/internal/tools"
)

// rpc sends one JSON-RPC request through the registered MCP server and
// returns the decoded response.
func rpc(t *testing.T, s *MCPContextToolServer, method string, params map[string]interface{}) map[string]interface{} {
	t.Helper()
	msg, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	raw, err := server.HandleMessage(s.mcpServer.GetServer(), msg)
	if err != nil {
		t.Fatalf("HandleMessage returned error: %v", err)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("Failed to unmarshal response %s: %v", raw, err)
	}
	return resp
}

// toolResult is the decoded result of a tools/call.
type toolResult struct {
	isError bool
	text    string
}

func callTool(t *testing.T, s *MCPContextToolServer, name string, args map[string]interface{}) toolResult {
	t.Helper()
	resp := rpc(t, s, "tools/call", map[string]interface{}{"name": name, "arguments": args})

	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("%s: expected a result, got %v", name, resp)
	}
	content, ok := result["content"].([]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("%s: expected one content block, got %v", name, result["content"])
	}
	block := content[0].(map[string]interface{})
	if block["type"] != tools.ContentTypeText {
		t.Errorf("%s: content type = %v, want text", name, block["type"])
	}
	isError, _ := result["isError"].(bool)
	text, _ := block["text"].(string)
	return toolResult{isError: isError, text: text}
}

func newWiredServer(t *testing.T) *MCPContextToolServer {
	t.Helper()
	s, _ := newFileServer(t)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

func TestToolsOverMCP(t *testing.T) {
	s := newWiredServer(t)

	tests := []struct {
		name      string
		tool      string
		args      map[string]interface{}
		wantError bool
		wantText  string
	}{
		{"empty list", tools.ToolListContextItems, map[string]interface{}{}, false, NoSavedContextsMsg},
		{"latest on empty store", tools.ToolLoadLatestContextItem, map[string]interface{}{}, true, "Error: no saved contexts"},
		{"blank context", tools.ToolLeaveOff, map[string]interface{}{"context": "  "}, true, "Error: "},
		{"traversal id", tools.ToolPickUp, map[string]interface{}{"id": "../secret"}, true, "Error: "},
		{"missing item", tools.ToolRemoveContextItem, map[string]interface{}{"id": "deadbeef@2024-05-01T12_00_00.000Z"}, true,
			"Error: context item deadbeef@2024-05-01T12_00_00.000Z not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := callTool(t, s, tt.tool, tt.args)
			if got.isError != tt.wantError {
				t.Errorf("isError = %v, want %v (text %q)", got.isError, tt.wantError, got.text)
			}
			if !strings.HasPrefix(got.text, tt.wantText) {
				t.Errorf("text = %q, want prefix %q", got.text, tt.wantText)
			}
			if strings.Contains(got.text, `"success"`) {
				t.Errorf("envelope leaked into content text: %q", got.text)
			}
		})
	}
}

func TestRoundTripOverMCP(t *testing.T) {
	s := newWiredServer(t)

	saved := callTool(t, s, tools.ToolLeaveOff, map[string]interface{}{"context": "resume at step 4"})
	if saved.isError {
		t.Fatalf("leave_off failed: %q", saved.text)
	}
	id := strings.TrimPrefix(saved.text, "Context saved with id: ")
	if id == saved.text {
		t.Fatalf("unexpected leave_off text %q", saved.text)
	}

	picked := callTool(t, s, tools.ToolPickUp, map[string]interface{}{"id": id})
	if picked.isError || picked.text != "resume at step 4" {
		t.Errorf("pick_up = %+v, want the saved content", picked)
	}

	latest := callTool(t, s, tools.ToolLoadLatestContextItem, map[string]interface{}{})
	if latest.isError || latest.text != "resume at step 4" {
		t.Errorf("load_latest_context_item = %+v", latest)
	}

	listed := callTool(t, s, tools.ToolListContextItems, map[string]interface{}{})
	if listed.isError || !strings.HasPrefix(listed.text, id+" (") {
		t.Errorf("list_context_items = %+v", listed)
	}

	removed := callTool(t, s, tools.ToolRemoveContextItem, map[string]interface{}{"id": id})
	if removed.isError || removed.text != "Context item "+id+" removed" {
		t.Errorf("remove_context_item = %+v", removed)
	}
}

func getPrompt(t *testing.T, s *MCPContextToolServer, name string, args map[string]interface{}) (string, map[string]interface{}) {
	t.Helper()
	resp := rpc(t, s, "prompts/get", map[string]interface{}{"name": name, "arguments": args})
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		return "", resp
	}
	messages := result["messages"].([]interface{})
	msg := messages[0].(map[string]interface{})
	if msg["role"] != "user" {
		t.Errorf("%s: role = %v, want user", name, msg["role"])
	}
	content, _ := msg["content"].(string)
	return content, resp
}

func TestPromptsOverMCP(t *testing.T) {
	s := newWiredServer(t)

	tests := []struct {
		name     string
		prompt   string
		args     map[string]interface{}
		contains string
	}{
		{"echo without message", prompts.PromptEcho, map[string]interface{}{}, "Please process this message: "},
		{"leave_off without focus", prompts.PromptLeaveOff, map[string]interface{}{}, tools.ToolLeaveOff},
		{"pick_up_latest", prompts.PromptPickUpLatest, map[string]interface{}{}, tools.ToolLoadLatestContextItem},
		{"pick_up with id", prompts.PromptPickUp, map[string]interface{}{"id": "abc12345@2024-05-01T12_00_00.000Z"},
			"`abc12345@2024-05-01T12_00_00.000Z`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, resp := getPrompt(t, s, tt.prompt, tt.args)
			if _, failed := resp["error"]; failed {
				t.Fatalf("prompts/get %s failed: %v", tt.prompt, resp["error"])
			}
			if !strings.Contains(content, tt.contains) {
				t.Errorf("content = %q, want it to contain %q", content, tt.contains)
			}
			if strings.Contains(content, "{{") {
				t.Errorf("unrendered placeholder in %q", content)
			}
		})
	}

	if _, resp := getPrompt(t, s, prompts.PromptPickUp, map[string]interface{}{}); resp["error"] == nil {
		t.Error("expected pick_up without id to be rejected")
	}
}

func TestPromptListAdvertisesRequiredArguments(t *testing.T) {
	s := newWiredServer(t)

	resp := rpc(t, s, "prompts/list", map[string]interface{}{})
	result := resp["result"].(map[string]interface{})

	args := make(map[string][]interface{})
	for _, p := range result["prompts"].([]interface{}) {
		entry := p.(map[string]interface{})
		list, _ := entry["arguments"].([]interface{})
		args[entry["name"].(string)] = list
	}

	if len(args) != len(prompts.All()) {
		t.Fatalf("expected %d prompts, got %d", len(prompts.All()), len(args))
	}
	for _, name := range []string{prompts.PromptEcho, prompts.PromptLeaveOff, prompts.PromptPickUpLatest} {
		if len(args[name]) != 0 {
			t.Errorf("%s advertises arguments %v, want none required", name, args[name])
		}
	}

	pickUp := args[prompts.PromptPickUp]
	if len(pickUp) != 1 {
		t.Fatalf("pick_up arguments = %v, want one", pickUp)
	}
	id := pickUp[0].(map[string]interface{})
	if id["name"] != "id" || id["required"] != true {
		t.Errorf("pick_up argument = %v, want required id", id)
	}
}
