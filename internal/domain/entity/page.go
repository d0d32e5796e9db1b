package entity

// PageState is what the agent sees at the start of a step.
type PageState struct {
	URL        string
	Title      string
	Tabs       []string
	Elements   []UIElement
	Screenshot *Screenshot
}

type UIElement struct {
	Index       int
	Tag         string
	Type        string
	Text        string
	AriaLabel   string
	Placeholder string
	Href        string
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
