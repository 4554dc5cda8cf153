// Package prompts defines the MCP prompts leaveoff exposes and renders them
// to plain strings.
//
// Templates use the {{name}} placeholders of the MCP server's prompt engine,
// so one definition serves both registration and Render.
package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/leaveoff/internal/errortypes"
	"github.com/localrivet/leaveoff/internal/tools"
)

// Prompt names
const (
	PromptLeaveOff     = "leave_off"
	PromptPickUp       = "pick_up"
	PromptPickUpLatest = "pick_up_latest"
	PromptEcho         = "echo"
)

// Argument describes one template placeholder.
type Argument struct {
	Name        string
	Description string
	Required    bool
}

// Prompt is a named, parameterized user message.
type Prompt struct {
	Name        string
	Description string
	Arguments   []Argument
	Template    string
}

var all = []Prompt{
	{
		Name:        PromptLeaveOff,
		Description: "Save the current state of the work so it can be resumed later.",
		Arguments: []Argument{
			{Name: "focus", Description: "Optional hint about what the summary should emphasise"},
		},
		Template: "We are pausing here. Write a concise but complete summary of where we left off: " +
			"the goal, decisions made, files touched, open questions and the next concrete steps. " +
			"Focus: {{focus}}\n" +
			"Then call the `" + tools.ToolLeaveOff + "` tool with that summary as `context` and tell me the id it returns.",
	},
	{
		Name:        PromptPickUp,
		Description: "Resume work from a saved context item.",
		Arguments: []Argument{
			{Name: "id", Description: "Identifier returned by leave_off", Required: true},
		},
		Template: "Call the `" + tools.ToolPickUp + "` tool with id `{{id}}`. " +
			"Read the saved context carefully, restate the next steps, and continue the work from there.",
	},
	{
		Name:        PromptPickUpLatest,
		Description: "Resume work from the most recently saved context item.",
		Template: "Call the `" + tools.ToolLoadLatestContextItem + "` tool. " +
			"Read the saved context carefully, restate the next steps, and continue the work from there.",
	},
	{
		Name:        PromptEcho,
		Description: "Echo a message back for processing.",
		Arguments: []Argument{
			{Name: "message", Description: "Message to process"},
		},
		Template: "Please process this message: {{message}}",
	},
}

// All returns every prompt in registration order.
func All() []Prompt {
	out := make([]Prompt, len(all))
	copy(out, all)
	return out
}

// Get looks up a prompt by name.
func Get(name string) (Prompt, bool) {
	for _, p := range all {
		if p.Name == name {
			return p, true
		}
	}
	return Prompt{}, false
}

// substitute fills every declared argument from values, using "" for
// missing ones. keepRequired leaves required placeholders in place.
func (p Prompt) substitute(values map[string]string, keepRequired bool) (string, error) {
	vars := make(map[string]interface{}, len(p.Arguments))
	for _, a := range p.Arguments {
		if keepRequired && a.Required {
			vars[a.Name] = "{{" + a.Name + "}}"
			continue
		}
		vars[a.Name] = values[a.Name]
	}

	out, err := server.SubstituteVariables(p.Template, vars)
	if err != nil {
		return "", errortypes.InternalError(err, "undeclared prompt placeholder").WithField("prompt", p.Name)
	}
	return out, nil
}

// Render substitutes args into the template. Missing optional arguments
// render as the empty string.
func (p Prompt) Render(args map[string]string) (string, error) {
	for _, a := range p.Arguments {
		if a.Required && strings.TrimSpace(args[a.Name]) == "" {
			return "", errortypes.ValidationError(fmt.Errorf("argument %q is required", a.Name), "invalid prompt arguments").
				WithField("prompt", p.Name)
		}
	}
	return p.substitute(args, false)
}

// Registered returns the template handed to the MCP server. The server
// treats every placeholder as mandatory, so optional arguments are rendered
// empty and only required placeholders remain.
func (p Prompt) Registered() (string, error) {
	return p.substitute(nil, true)
}

// ServerArguments converts the declared arguments to the server's form.
func (p Prompt) ServerArguments() []server.PromptArgument {
	var out []server.PromptArgument
	for _, a := range p.Arguments {
		if !a.Required {
			continue
		}
		out = append(out, server.PromptArgument{Name: a.Name, Description: a.Description, Required: true})
	}
	return out
}

// Render looks up the named prompt and renders it.
func Render(name string, args map[string]string) (string, error) {
	p, ok := Get(name)
	if !ok {
		return "", errortypes.ValidationError(errors.New("unknown prompt"), "invalid prompt").WithField("prompt", name)
	}
	return p.Render(args)
}
