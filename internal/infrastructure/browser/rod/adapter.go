package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

var ErrClosed = errors.New("browser driver closed")

// BrowserAdapter drives one tab of a remote profile browser.
type BrowserAdapter struct {
	browser     *rod.Browser
	disconnect  context.CancelFunc
	jar         output.CookieJar
	cookiesPath string
	timeout     time.Duration
	logger      output.LoggerPort

	mu       sync.Mutex
	page     *rod.Page
	elements map[int]entity.UIElement
	closed   bool
}

func (b *BrowserAdapter) currentPage(ctx context.Context) (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.page.Context(ctx), nil
}

func (b *BrowserAdapter) State(ctx context.Context, withScreenshot bool) (*entity.PageState, error) {
	page, err := b.currentPage(ctx)
	if err != nil {
		return nil, err
	}

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info: %w", err)
	}

	state := &entity.PageState{URL: info.URL, Title: info.Title}

	res, err := page.Timeout(b.timeout).Eval(markElementsJS, indexAttr, maxElements)
	if err != nil {
		b.logger.Warn("Element indexing failed", "url", info.URL, "error", err)
	} else {
		var marked []markedElement
		if err := res.Value.Unmarshal(&marked); err != nil {
			return nil, fmt.Errorf("decode elements: %w", err)
		}
		state.Elements = make([]entity.UIElement, 0, len(marked))
		for _, m := range marked {
			state.Elements = append(state.Elements, entity.UIElement{
				Index:       m.Index,
				Tag:         m.Tag,
				Type:        m.Type,
				Text:        m.Text,
				AriaLabel:   m.AriaLabel,
				Placeholder: m.Placeholder,
				Href:        m.Href,
			})
		}
	}

	b.mu.Lock()
	b.elements = make(map[int]entity.UIElement, len(state.Elements))
	for _, el := range state.Elements {
		b.elements[el.Index] = el
	}
	b.mu.Unlock()

	if pages, err := b.browser.Context(ctx).Pages(); err == nil {
		for _, p := range pages {
			if pi, err := p.Info(); err == nil {
				state.Tabs = append(state.Tabs, pi.URL)
			}
		}
	}

	if withScreenshot {
		raw, err := page.Timeout(b.timeout).Screenshot(false, &proto.PageCaptureScreenshot{
			Format:  proto.PageCaptureScreenshotFormatJpeg,
			Quality: gson.Int(80),
		})
		if err != nil {
			b.logger.Warn("Screenshot failed", "url", info.URL, "error", err)
		} else if shot, err := shrinkScreenshot(raw); err == nil {
			state.Screenshot = shot
		}
	}

	return state, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	page, err := b.currentPage(ctx)
	if err != nil {
		return err
	}
	if err := page.Timeout(b.timeout).Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	b.settle(page)
	return nil
}

func (b *BrowserAdapter) GoBack(ctx context.Context) error {
	page, err := b.currentPage(ctx)
	if err != nil {
		return err
	}
	if err := page.NavigateBack(); err != nil {
		return fmt.Errorf("go back failed: %w", err)
	}
	b.settle(page)
	return nil
}

func (b *BrowserAdapter) ClickElement(ctx context.Context, index int) error {
	page, err := b.currentPage(ctx)
	if err != nil {
		return err
	}

	el, err := page.Timeout(b.timeout).Element(indexSelector(index))
	if err != nil {
		return fmt.Errorf("element %d not found: %w", index, err)
	}

	before := b.targetIDs(ctx)

	if err := el.ScrollIntoView(); err != nil {
		b.logger.Debug("Scroll into view failed", "index", index, "error", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	b.settle(page)
	b.followNewTab(ctx, before)
	return nil
}

func (b *BrowserAdapter) InputText(ctx context.Context, index int, text string) error {
	page, err := b.currentPage(ctx)
	if err != nil {
		return err
	}

	el, err := page.Timeout(b.timeout).Element(indexSelector(index))
	if err != nil {
		return fmt.Errorf("field %d not found: %w", index, err)
	}

	b.mu.Lock()
	known := b.elements[index]
	b.mu.Unlock()

	if known.Tag == "select" {
		if err := el.Select([]string{text}, true, rod.SelectorTypeText); err != nil {
			return fmt.Errorf("select option failed: %w", err)
		}
		return nil
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

var namedKeys = map[string]input.Key{
	"enter":      input.Enter,
	"tab":        input.Tab,
	"escape":     input.Escape,
	"esc":        input.Escape,
	"backspace":  input.Backspace,
	"arrowdown":  input.ArrowDown,
	"arrowup":    input.ArrowUp,
	"arrowleft":  input.ArrowLeft,
	"arrowright": input.ArrowRight,
	"pagedown":   input.PageDown,
	"pageup":     input.PageUp,
	"space":      input.Space,
}

// SendKeys presses a named key, or types the text into the focused element.
func (b *BrowserAdapter) SendKeys(ctx context.Context, keys string) error {
	page, err := b.currentPage(ctx)
	if err != nil {
		return err
	}

	if key, ok := lookupKey(keys); ok {
		if err := page.Keyboard.Press(key); err != nil {
			return fmt.Errorf("press %s failed: %w", keys, err)
		}
		b.settle(page)
		return nil
	}

	if err := page.InsertText(keys); err != nil {
		return fmt.Errorf("type text failed: %w", err)
	}
	return nil
}

func lookupKey(keys string) (input.Key, bool) {
	key, ok := namedKeys[strings.ToLower(strings.TrimSpace(keys))]
	return key, ok
}

func (b *BrowserAdapter) Scroll(ctx context.Context, direction string) error {
	page, err := b.currentPage(ctx)
	if err != nil {
		return err
	}

	var js string
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "down", "":
		js = scrollDownJS
	case "up":
		js = scrollUpJS
	case "top":
		js = scrollTopJS
	case "bottom":
		js = scrollBottomJS
	default:
		return fmt.Errorf("unknown scroll direction: %s", direction)
	}

	if _, err := page.Eval(js); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	_ = page.WaitIdle(800 * time.Millisecond)
	return nil
}

func (b *BrowserAdapter) PageHTML(ctx context.Context) (string, error) {
	page, err := b.currentPage(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.Timeout(b.timeout).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (b *BrowserAdapter) CurrentURL(ctx context.Context) string {
	page, err := b.currentPage(ctx)
	if err != nil {
		return ""
	}
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) saveCookies(ctx context.Context) error {
	cookies, err := b.browser.Context(ctx).GetCookies()
	if err != nil {
		return fmt.Errorf("get cookies: %w", err)
	}
	if err := b.jar.Write(b.cookiesPath, FromNetworkCookies(cookies)); err != nil {
		return err
	}
	b.logger.Debug("Cookies saved", "path", b.cookiesPath, "count", len(cookies))
	return nil
}

// Close saves cookies and drops the DevTools connection. Safe to call twice.
func (b *BrowserAdapter) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	err := b.saveCookies(ctx)
	b.disconnect()
	return err
}

// settle waits for the load event and a short network idle window.
func (b *BrowserAdapter) settle(page *rod.Page) {
	p := page.Timeout(b.timeout)
	if err := p.WaitLoad(); err != nil {
		b.logger.Debug("Wait load interrupted", "error", err)
	}
	_ = page.WaitIdle(2 * time.Second)
}

func (b *BrowserAdapter) targetIDs(ctx context.Context) map[proto.TargetTargetID]bool {
	ids := map[proto.TargetTargetID]bool{}
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return ids
	}
	for _, p := range pages {
		ids[p.TargetID] = true
	}
	return ids
}

// followNewTab switches to a tab the last action opened, if any.
func (b *BrowserAdapter) followNewTab(ctx context.Context, before map[proto.TargetTargetID]bool) {
	pages, err := b.browser.Context(ctx).Pages()
	if err != nil {
		return
	}
	for _, p := range pages {
		if before[p.TargetID] {
			continue
		}
		if _, err := p.Activate(); err != nil {
			continue
		}
		b.mu.Lock()
		b.page = p
		b.mu.Unlock()
		b.logger.Debug("Switched to new tab", "target", p.TargetID)
		return
	}
}
