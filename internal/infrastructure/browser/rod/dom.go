package rod

import "strconv"

const (
	indexAttr   = "data-agent-index"
	maxElements = 500
)

// markElementsJS tags visible interactive elements with a numeric index and returns their summary.
const markElementsJS = `(attr, max) => {
	document.querySelectorAll('[' + attr + ']').forEach(e => e.removeAttribute(attr));
	const selector = [
		'a[href]', 'button', 'input:not([type=hidden])', 'textarea', 'select', 'summary',
		'[role=button]', '[role=link]', '[role=checkbox]', '[role=radio]', '[role=tab]',
		'[role=menuitem]', '[role=option]', '[role=combobox]', '[contenteditable=""]',
		'[contenteditable=true]', '[onclick]'
	].join(',');
	const out = [];
	for (const el of document.querySelectorAll(selector)) {
		if (out.length >= max) break;
		const rect = el.getBoundingClientRect();
		if (rect.width === 0 || rect.height === 0) continue;
		const style = window.getComputedStyle(el);
		if (style.visibility === 'hidden' || style.display === 'none' || el.disabled) continue;
		const index = out.length;
		el.setAttribute(attr, String(index));
		const text = (el.innerText || el.value || '').replace(/\s+/g, ' ').trim();
		out.push({
			index: index,
			tag: el.tagName.toLowerCase(),
			type: el.getAttribute('type') || '',
			text: text.slice(0, 100),
			ariaLabel: el.getAttribute('aria-label') || '',
			placeholder: el.getAttribute('placeholder') || '',
			href: el.getAttribute('href') || ''
		});
	}
	return out;
}`

const (
	scrollDownJS   = `() => window.scrollBy(0, window.innerHeight * 0.8)`
	scrollUpJS     = `() => window.scrollBy(0, -window.innerHeight * 0.8)`
	scrollTopJS    = `() => window.scrollTo(0, 0)`
	scrollBottomJS = `() => window.scrollTo(0, document.body.scrollHeight)`
)

func indexSelector(index int) string {
	return `[` + indexAttr + `="` + strconv.Itoa(index) + `"]`
}

type markedElement struct {
	Index       int    `json:"index"`
	Tag         string `json:"tag"`
	Type        string `json:"type"`
	Text        string `json:"text"`
	AriaLabel   string `json:"ariaLabel"`
	Placeholder string `json:"placeholder"`
	Href        string `json:"href"`
}
