package entity

type ToolName string

// Actions available to the agent inside the browser.
const (
	ToolGoToURL        ToolName = "go_to_url"
	ToolSearchGoogle   ToolName = "search_google"
	ToolGoBack         ToolName = "go_back"
	ToolClickElement   ToolName = "click_element"
	ToolInputText      ToolName = "input_text"
	ToolSendKeys       ToolName = "send_keys"
	ToolScroll         ToolName = "scroll"
	ToolExtractContent ToolName = "extract_content"
	ToolWait           ToolName = "wait"
	ToolDone           ToolName = "done"
)

// ToolRunTask is the single tool exposed over MCP.
const ToolRunTask ToolName = "run_task"

func (t ToolName) String() string {
	return string(t)
}
