package rodwrapper

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements dropped with their subtree before markdown conversion.
var droppedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "canvas": true, "iframe": true, "object": true, "embed": true,
	"head": true, "link": true, "meta": true, "title": true,
}

// Attributes the converter and the content region lookup need. Everything else goes.
var keptAttrs = map[string]bool{
	"id": true, "class": true, "role": true,
	"href": true, "src": true, "alt": true, "title": true,
	"colspan": true, "rowspan": true, "lang": true,
}

// CleanHTML reduces a page to its visible body markup.
func CleanHTML(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}
	prune(body)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && (droppedTags[c.Data] || hidden(c)):
			n.RemoveChild(c)
		case c.Type == html.ElementNode:
			c.Attr = keepAttrs(c.Attr)
			prune(c)
		}
		c = next
	}
}

// hidden reports elements a user cannot see, so the agent should not read them either.
func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(a.Val, "true") {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func keepAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		if keptAttrs[strings.ToLower(a.Key)] {
			kept = append(kept, a)
		}
	}
	return kept
}
