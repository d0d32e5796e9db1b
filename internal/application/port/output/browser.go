package output

import (
	"context"

	"browser-use-gologin/internal/domain/entity"
)

// BrowserPort drives the page of a profile browser for the agent loop.
type BrowserPort interface {
	State(ctx context.Context, withScreenshot bool) (*entity.PageState, error)

	Navigate(ctx context.Context, url string) error
	GoBack(ctx context.Context) error
	ClickElement(ctx context.Context, index int) error
	InputText(ctx context.Context, index int, text string) error
	SendKeys(ctx context.Context, keys string) error
	Scroll(ctx context.Context, direction string) error

	PageHTML(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) string

	// Close saves cookies and detaches. The remote browser keeps running.
	Close(ctx context.Context) error
}

type BrowserFactory interface {
	Connect(ctx context.Context, address, cookiesPath string, auth *entity.ProxyAuth) (BrowserPort, error)
}
