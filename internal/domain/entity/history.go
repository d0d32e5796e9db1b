package entity

import "encoding/json"

// Action is one tool call the agent issued, serialized as {"<name>": {params}}.
type Action struct {
	Name   string
	Params map[string]any
}

func (a Action) MarshalJSON() ([]byte, error) {
	params := a.Params
	if params == nil {
		params = map[string]any{}
	}
	return json.Marshal(map[string]any{a.Name: params})
}

type ActionResult struct {
	ExtractedContent string `json:"extracted_content,omitempty"`
	IsDone           bool   `json:"is_done"`
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
}

// Step is one round of the agent loop: the page it looked at and what it did there.
type Step struct {
	Number  int
	URL     string
	Title   string
	Actions []Action
	Results []ActionResult
	Error   string
}

type History struct {
	Steps []Step
}

func (h *History) Add(step Step) {
	h.Steps = append(h.Steps, step)
}

func (h *History) Actions() []Action {
	var result []Action
	for _, s := range h.Steps {
		result = append(result, s.Actions...)
	}
	return result
}

func (h *History) ExtractedContent() []string {
	var result []string
	for _, s := range h.Steps {
		for _, r := range s.Results {
			if r.ExtractedContent != "" {
				result = append(result, r.ExtractedContent)
			}
		}
	}
	return result
}

func (h *History) lastResult() (ActionResult, bool) {
	if len(h.Steps) == 0 {
		return ActionResult{}, false
	}
	results := h.Steps[len(h.Steps)-1].Results
	if len(results) == 0 {
		return ActionResult{}, false
	}
	return results[len(results)-1], true
}

// FinalResult returns the content of the last recorded result, nil when there is none.
func (h *History) FinalResult() *string {
	r, ok := h.lastResult()
	if !ok || r.ExtractedContent == "" {
		return nil
	}
	content := r.ExtractedContent
	return &content
}

func (h *History) IsDone() bool {
	r, ok := h.lastResult()
	return ok && r.IsDone
}

func (h *History) URLs() []string {
	var result []string
	for _, s := range h.Steps {
		if s.URL != "" {
			result = append(result, s.URL)
		}
	}
	return result
}

func (h *History) Errors() []string {
	var result []string
	for _, s := range h.Steps {
		if s.Error != "" {
			result = append(result, s.Error)
		}
		for _, r := range s.Results {
			if r.Error != "" {
				result = append(result, r.Error)
			}
		}
	}
	return result
}

// TaskSummary is the JSON payload returned by run_task.
type TaskSummary struct {
	Steps            int      `json:"steps"`
	Actions          []Action `json:"actions"`
	ExtractedContent []string `json:"extracted_content"`
	FinalResult      *string  `json:"final_result"`
	URLsVisited      []string `json:"urls_visited"`
	IsDone           bool     `json:"is_done"`
	Errors           []string `json:"errors"`
}

func (h *History) Summary() *TaskSummary {
	actions := h.Actions()
	return &TaskSummary{
		Steps:            len(actions),
		Actions:          nonNil(actions),
		ExtractedContent: nonNil(h.ExtractedContent()),
		FinalResult:      h.FinalResult(),
		URLsVisited:      nonNil(h.URLs()),
		IsDone:           h.IsDone(),
		Errors:           nonNil(h.Errors()),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
