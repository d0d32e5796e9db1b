package agent

import (
	"fmt"
	"strings"

	"browser-use-gologin/internal/domain/entity"
)

const maxElementText = 100

// stateMessage describes the page for one model call. It is not kept in the conversation.
func stateMessage(state *entity.PageState, step, maxSteps int) entity.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Step %d of %d.\n", step, maxSteps)
	fmt.Fprintf(&sb, "Current URL: %s\n", state.URL)
	if state.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", state.Title)
	}
	if len(state.Tabs) > 1 {
		sb.WriteString("Open tabs:\n")
		for i, tab := range state.Tabs {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, tab)
		}
	}

	sb.WriteString("\nInteractive elements:\n")
	if len(state.Elements) == 0 {
		sb.WriteString("(none found on the visible page)\n")
	}
	for _, el := range state.Elements {
		sb.WriteString(formatElement(el))
		sb.WriteByte('\n')
	}

	msg := entity.Message{Role: entity.RoleUser, Content: sb.String()}
	if state.Screenshot != nil {
		msg.Images = []entity.Screenshot{*state.Screenshot}
	}
	return msg
}

func formatElement(el entity.UIElement) string {
	var attrs strings.Builder
	writeAttr(&attrs, "type", el.Type)
	writeAttr(&attrs, "placeholder", el.Placeholder)
	writeAttr(&attrs, "aria-label", el.AriaLabel)
	writeAttr(&attrs, "href", el.Href)

	text := strings.Join(strings.Fields(el.Text), " ")
	if r := []rune(text); len(r) > maxElementText {
		text = string(r[:maxElementText]) + "..."
	}
	return fmt.Sprintf("[%d]<%s%s>%s</%s>", el.Index, el.Tag, attrs.String(), text, el.Tag)
}

func writeAttr(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, " %s=%q", name, value)
}
