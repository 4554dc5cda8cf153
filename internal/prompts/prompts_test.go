package prompts

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/leaveoff/internal/errortypes"
)

func TestRenderEcho(t *testing.T) {
	got, err := Render(PromptEcho, map[string]string{"message": "hello"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if got != "Please process this message: hello" {
		t.Errorf("Render() = %q", got)
	}

	got, err = Render(PromptEcho, nil)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if got != "Please process this message: " {
		t.Errorf("Render() with no args = %q", got)
	}
}

func TestRenderPickUp(t *testing.T) {
	got, err := Render(PromptPickUp, map[string]string{"id": "a1b2c3d4@2024-05-01T12_30_00.000Z"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(got, "`a1b2c3d4@2024-05-01T12_30_00.000Z`") {
		t.Errorf("expected id in rendered prompt, got %q", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("unrendered placeholder in %q", got)
	}
}

func TestRenderMissingRequired(t *testing.T) {
	for _, args := range []map[string]string{nil, {"id": "  "}} {
		if _, err := Render(PromptPickUp, args); !errortypes.IsValidationError(err) {
			t.Errorf("expected validation error for args %v, got %v", args, err)
		}
	}
}

func TestRenderUnknown(t *testing.T) {
	if _, err := Render("nope", nil); !errortypes.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRenderFillsEveryPlaceholder(t *testing.T) {
	for _, p := range All() {
		t.Run(p.Name, func(t *testing.T) {
			args := make(map[string]string)
			for _, a := range p.Arguments {
				args[a.Name] = "value-" + a.Name
			}
			got, err := p.Render(args)
			if err != nil {
				t.Fatalf("Render returned error: %v", err)
			}
			if strings.Contains(got, "{{") {
				t.Errorf("unrendered placeholder in %q", got)
			}
			for name, value := range args {
				if !strings.Contains(got, value) {
					t.Errorf("argument %s missing from %q", name, got)
				}
			}
		})
	}
}

func TestRegisteredKeepsOnlyRequiredPlaceholders(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{PromptEcho, "Please process this message: "},
		{PromptPickUp, "Call the `pick_up` tool with id `{{id}}`. " +
			"Read the saved context carefully, restate the next steps, and continue the work from there."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Get(tt.name)
			if !ok {
				t.Fatalf("prompt %s not found", tt.name)
			}
			got, err := p.Registered()
			if err != nil {
				t.Fatalf("Registered returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Registered() = %q, want %q", got, tt.want)
			}
		})
	}

	leaveOff, _ := Get(PromptLeaveOff)
	got, err := leaveOff.Registered()
	if err != nil {
		t.Fatalf("Registered returned error: %v", err)
	}
	if strings.Contains(got, "{{focus}}") {
		t.Errorf("optional placeholder left in registered template %q", got)
	}
}

func TestServerArguments(t *testing.T) {
	pickUp, _ := Get(PromptPickUp)
	want := []server.PromptArgument{{Name: "id", Description: "Identifier returned by leave_off", Required: true}}
	if diff := cmp.Diff(want, pickUp.ServerArguments()); diff != "" {
		t.Errorf("ServerArguments() mismatch (-want +got):\n%s", diff)
	}

	echo, _ := Get(PromptEcho)
	if args := echo.ServerArguments(); len(args) != 0 {
		t.Errorf("expected no advertised arguments for echo, got %+v", args)
	}
}

func TestUndeclaredPlaceholder(t *testing.T) {
	p := Prompt{Name: "broken", Template: "Hello {{who}}"}
	if _, err := p.Render(nil); err == nil {
		t.Error("expected error for undeclared placeholder")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	list[0].Name = "mutated"
	if p, _ := Get(PromptLeaveOff); p.Name != PromptLeaveOff {
		t.Error("All must not expose the registry slice")
	}
}
