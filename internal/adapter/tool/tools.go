// Package tool holds the browser actions the agent can call.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
	"browser-use-gologin/internal/infrastructure/browser/rodwrapper"
	"browser-use-gologin/internal/infrastructure/urlpolicy"
)

const (
	maxWait          = 10 * time.Second
	maxExtractLength = 20000
	searchURL        = "https://www.google.com/search?udm=14&q="
)

// URLChecker rejects navigation outside the allowed domains.
type URLChecker interface {
	Check(rawURL string) error
}

// RegisterAll adds every browser action to registry in the order the model sees them.
func RegisterAll(registry output.ToolRegistry, browser output.BrowserPort, policy URLChecker, logger output.LoggerPort) {
	registry.Register(NewGoToURLTool(browser, policy, logger))
	registry.Register(NewSearchGoogleTool(browser, policy, logger))
	registry.Register(NewGoBackTool(browser, logger))
	registry.Register(NewClickElementTool(browser, logger))
	registry.Register(NewInputTextTool(browser, logger))
	registry.Register(NewSendKeysTool(browser, logger))
	registry.Register(NewScrollTool(browser, logger))
	registry.Register(NewExtractContentTool(browser, logger))
	registry.Register(NewWaitTool(logger))
	registry.Register(NewDoneTool())
}

func decode(args string, v any) error {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func ok(content string) entity.ActionResult {
	return entity.ActionResult{ExtractedContent: content, Success: true}
}

type GoToURLTool struct {
	browser output.BrowserPort
	policy  URLChecker
	logger  output.LoggerPort
}

func NewGoToURLTool(browser output.BrowserPort, policy URLChecker, logger output.LoggerPort) *GoToURLTool {
	return &GoToURLTool{browser: browser, policy: policy, logger: logger}
}

func (t *GoToURLTool) Name() entity.ToolName { return entity.ToolGoToURL }
func (t *GoToURLTool) Description() string {
	return "Navigate the current tab to a URL"
}
func (t *GoToURLTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"url": map[string]interface{}{
			"type":        "string",
			"description": "URL to open, scheme optional",
		},
	}, "url")
}

func (t *GoToURLTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	target := urlpolicy.Normalize(input.URL)
	if target == "" {
		return entity.ActionResult{}, fmt.Errorf("url is required")
	}
	if t.policy != nil {
		if err := t.policy.Check(target); err != nil {
			return entity.ActionResult{}, err
		}
	}
	if err := t.browser.Navigate(ctx, target); err != nil {
		return entity.ActionResult{}, err
	}
	t.logger.Debug("Navigated", "url", target)
	return ok(fmt.Sprintf("Navigated to %s", t.browser.CurrentURL(ctx))), nil
}

type SearchGoogleTool struct {
	browser output.BrowserPort
	policy  URLChecker
	logger  output.LoggerPort
}

func NewSearchGoogleTool(browser output.BrowserPort, policy URLChecker, logger output.LoggerPort) *SearchGoogleTool {
	return &SearchGoogleTool{browser: browser, policy: policy, logger: logger}
}

func (t *SearchGoogleTool) Name() entity.ToolName { return entity.ToolSearchGoogle }
func (t *SearchGoogleTool) Description() string {
	return "Search Google in the current tab"
}
func (t *SearchGoogleTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"query": map[string]interface{}{
			"type":        "string",
			"description": "Search query",
		},
	}, "query")
}

func (t *SearchGoogleTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	var input struct {
		Query string `json:"query"`
	}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	if strings.TrimSpace(input.Query) == "" {
		return entity.ActionResult{}, fmt.Errorf("query is required")
	}
	target := searchURL + url.QueryEscape(input.Query)
	if t.policy != nil {
		if err := t.policy.Check(target); err != nil {
			return entity.ActionResult{}, err
		}
	}
	if err := t.browser.Navigate(ctx, target); err != nil {
		return entity.ActionResult{}, err
	}
	return ok(fmt.Sprintf("Searched for %q in Google", input.Query)), nil
}

type GoBackTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewGoBackTool(browser output.BrowserPort, logger output.LoggerPort) *GoBackTool {
	return &GoBackTool{browser: browser, logger: logger}
}

func (t *GoBackTool) Name() entity.ToolName { return entity.ToolGoBack }
func (t *GoBackTool) Description() string   { return "Go back to the previous page" }
func (t *GoBackTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{})
}

func (t *GoBackTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	if err := t.browser.GoBack(ctx); err != nil {
		return entity.ActionResult{}, err
	}
	return ok("Navigated back"), nil
}

type ClickElementTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewClickElementTool(browser output.BrowserPort, logger output.LoggerPort) *ClickElementTool {
	return &ClickElementTool{browser: browser, logger: logger}
}

func (t *ClickElementTool) Name() entity.ToolName { return entity.ToolClickElement }
func (t *ClickElementTool) Description() string {
	return "Click an interactive element by its index from the page state"
}
func (t *ClickElementTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"index": map[string]interface{}{
			"type":        "integer",
			"description": "Element index",
		},
	}, "index")
}

func (t *ClickElementTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	var input struct {
		Index *int `json:"index"`
	}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	if input.Index == nil {
		return entity.ActionResult{}, fmt.Errorf("index is required")
	}
	if err := t.browser.ClickElement(ctx, *input.Index); err != nil {
		return entity.ActionResult{}, err
	}
	return ok(fmt.Sprintf("Clicked element %d", *input.Index)), nil
}

type InputTextTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewInputTextTool(browser output.BrowserPort, logger output.LoggerPort) *InputTextTool {
	return &InputTextTool{browser: browser, logger: logger}
}

func (t *InputTextTool) Name() entity.ToolName { return entity.ToolInputText }
func (t *InputTextTool) Description() string {
	return "Type text into an input, textarea or select element by its index"
}
func (t *InputTextTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"index": map[string]interface{}{
			"type":        "integer",
			"description": "Element index",
		},
		"text": map[string]interface{}{
			"type":        "string",
			"description": "Text to type, or the option text for a select",
		},
	}, "index", "text")
}

func (t *InputTextTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	var input struct {
		Index *int   `json:"index"`
		Text  string `json:"text"`
	}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	if input.Index == nil {
		return entity.ActionResult{}, fmt.Errorf("index is required")
	}
	if err := t.browser.InputText(ctx, *input.Index, input.Text); err != nil {
		return entity.ActionResult{}, err
	}
	return ok(fmt.Sprintf("Input %q into element %d", input.Text, *input.Index)), nil
}

type SendKeysTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewSendKeysTool(browser output.BrowserPort, logger output.LoggerPort) *SendKeysTool {
	return &SendKeysTool{browser: browser, logger: logger}
}

func (t *SendKeysTool) Name() entity.ToolName { return entity.ToolSendKeys }
func (t *SendKeysTool) Description() string {
	return "Press a key such as Enter, Tab, Escape or Backspace in the focused element, or type raw text"
}
func (t *SendKeysTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"keys": map[string]interface{}{
			"type":        "string",
			"description": "Key name or text",
		},
	}, "keys")
}

func (t *SendKeysTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	var input struct {
		Keys string `json:"keys"`
	}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	if input.Keys == "" {
		return entity.ActionResult{}, fmt.Errorf("keys is required")
	}
	if err := t.browser.SendKeys(ctx, input.Keys); err != nil {
		return entity.ActionResult{}, err
	}
	return ok(fmt.Sprintf("Sent keys: %s", input.Keys)), nil
}

type ScrollTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewScrollTool(browser output.BrowserPort, logger output.LoggerPort) *ScrollTool {
	return &ScrollTool{browser: browser, logger: logger}
}

func (t *ScrollTool) Name() entity.ToolName { return entity.ToolScroll }
func (t *ScrollTool) Description() string   { return "Scroll the page" }
func (t *ScrollTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"direction": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"up", "down", "top", "bottom"},
			"description": "Scroll direction",
		},
	}, "direction")
}

func (t *ScrollTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	var input struct {
		Direction string `json:"direction"`
	}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	switch input.Direction {
	case "up", "down", "top", "bottom":
	default:
		return entity.ActionResult{}, fmt.Errorf("unknown scroll direction %q", input.Direction)
	}
	if err := t.browser.Scroll(ctx, input.Direction); err != nil {
		return entity.ActionResult{}, err
	}
	return ok(fmt.Sprintf("Scrolled %s", input.Direction)), nil
}

type ExtractContentTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewExtractContentTool(browser output.BrowserPort, logger output.LoggerPort) *ExtractContentTool {
	return &ExtractContentTool{browser: browser, logger: logger}
}

func (t *ExtractContentTool) Name() entity.ToolName { return entity.ToolExtractContent }
func (t *ExtractContentTool) Description() string {
	return "Read the main content of the current page as markdown"
}
func (t *ExtractContentTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"goal": map[string]interface{}{
			"type":        "string",
			"description": "What information to look for",
		},
	}, "goal")
}

func (t *ExtractContentTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	var input struct {
		Goal string `json:"goal"`
	}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	raw, err := t.browser.PageHTML(ctx)
	if err != nil {
		return entity.ActionResult{}, err
	}
	page, err := rodwrapper.ExtractMarkdown(raw, maxExtractLength)
	if err != nil {
		return entity.ActionResult{}, fmt.Errorf("extract content: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Extracted from %s", t.browser.CurrentURL(ctx))
	if input.Goal != "" {
		fmt.Fprintf(&sb, " for goal %q", input.Goal)
	}
	sb.WriteString(":\n")
	if page.Title != "" {
		sb.WriteString("# " + page.Title + "\n\n")
	}
	sb.WriteString(page.Markdown)
	return ok(sb.String()), nil
}

type WaitTool struct {
	logger output.LoggerPort
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewWaitTool(logger output.LoggerPort) *WaitTool {
	return &WaitTool{logger: logger, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *WaitTool) Name() entity.ToolName { return entity.ToolWait }
func (t *WaitTool) Description() string {
	return "Wait for the page to change, at most 10 seconds"
}
func (t *WaitTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"seconds": map[string]interface{}{
			"type":        "integer",
			"description": "Seconds to wait, default 3",
		},
	})
}

func (t *WaitTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	input := struct {
		Seconds int `json:"seconds"`
	}{Seconds: 3}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	d := time.Duration(input.Seconds) * time.Second
	if d < 0 {
		d = 0
	}
	if d > maxWait {
		d = maxWait
	}
	if err := t.sleep(ctx, d); err != nil {
		return entity.ActionResult{}, err
	}
	return ok(fmt.Sprintf("Waited %s", d)), nil
}

type DoneTool struct{}

func NewDoneTool() *DoneTool {
	return &DoneTool{}
}

func (t *DoneTool) Name() entity.ToolName { return entity.ToolDone }
func (t *DoneTool) Description() string {
	return "Finish the task and report the result to the user"
}
func (t *DoneTool) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"text": map[string]interface{}{
			"type":        "string",
			"description": "Final answer or summary of what was done",
		},
		"success": map[string]interface{}{
			"type":        "boolean",
			"description": "Whether the task was completed",
		},
	}, "text")
}

func (t *DoneTool) Execute(ctx context.Context, args string) (entity.ActionResult, error) {
	input := struct {
		Text    string `json:"text"`
		Success *bool  `json:"success"`
	}{}
	if err := decode(args, &input); err != nil {
		return entity.ActionResult{}, err
	}
	success := true
	if input.Success != nil {
		success = *input.Success
	}
	return entity.ActionResult{
		ExtractedContent: input.Text,
		IsDone:           true,
		Success:          success,
	}, nil
}
