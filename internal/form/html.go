package form

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrFormNotFound is returned when the markup has no form with the requested id.
var ErrFormNotFound = errors.New("form not found")

// ParseHTML reads page markup and returns the entries the browser would
// submit for the <form> with the given id.
func ParseHTML(r io.Reader, id string) (*Form, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	root := findForm(doc, id)
	if root == nil {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, id)
	}

	f := &Form{}
	collect(root, f)
	return f, nil
}

func findForm(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Form && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findForm(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collect(n *html.Node, f *Form) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Input:
			collectInput(c, f)
			continue
		case atom.Select:
			collectSelect(c, f)
			continue
		case atom.Textarea:
			if name := attr(c, "name"); name != "" && !hasAttr(c, "disabled") {
				f.Add(name, textContent(c))
			}
			continue
		}
		collect(c, f)
	}
}

func collectInput(n *html.Node, f *Form) {
	name := attr(n, "name")
	if name == "" || hasAttr(n, "disabled") {
		return
	}

	typ := strings.ToLower(attr(n, "type"))
	switch typ {
	case "submit", "button", "reset", "image", "file":
		return
	case "checkbox", "radio":
		if !hasAttr(n, "checked") {
			return
		}
		value := "on"
		if hasAttr(n, "value") {
			value = attr(n, "value")
		}
		f.Add(name, value)
	default:
		f.Add(name, attr(n, "value"))
	}
}

func collectSelect(n *html.Node, f *Form) {
	name := attr(n, "name")
	if name == "" || hasAttr(n, "disabled") {
		return
	}

	var options []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Option {
				options = append(options, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)

	multiple := hasAttr(n, "multiple")
	picked := false
	for _, o := range options {
		if hasAttr(o, "selected") && !hasAttr(o, "disabled") {
			f.Add(name, optionValue(o))
			picked = true
			if !multiple {
				return
			}
		}
	}
	if picked || multiple {
		return
	}
	for _, o := range options {
		if !hasAttr(o, "disabled") {
			f.Add(name, optionValue(o))
			return
		}
	}
}

func optionValue(o *html.Node) string {
	if hasAttr(o, "value") {
		return attr(o, "value")
	}
	return strings.TrimSpace(textContent(o))
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		if p.Type == html.TextNode {
			b.WriteString(p.Data)
		}
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
