package dom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"
)

func NavigateAction(url string) chromedp.Action {
	return chromedp.Navigate(url)
}

func ClickAction(selector string) chromedp.Action {
	return chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	}
}

func TypeAction(selector, text string) chromedp.Action {
	return chromedp.SendKeys(selector, text, chromedp.ByQuery)
}

func WaitVisibleAction(selector string) chromedp.Action {
	return chromedp.WaitVisible(selector, chromedp.ByQuery)
}

func WaitHiddenAction(selector string) chromedp.Action {
	return chromedp.WaitNotVisible(selector, chromedp.ByQuery)
}

func RunScriptAction(script string, res interface{}) chromedp.Action {
	return chromedp.Evaluate(script, res)
}

func ScreenshotAction(quality int, res *[]byte) chromedp.Action {
	return chromedp.FullScreenshot(res, quality)
}

func OuterHTMLAction(res *string) chromedp.Action {
	return chromedp.Evaluate(`document.documentElement.outerHTML`, res)
}

// TextVisibleAction reports whether any rendered element contains the given
// text fragment. Matching nodes hidden via display:none, visibility:hidden,
// or an empty layout box do not count, mirroring what a user can see.
func TextVisibleAction(text string, visible *bool) chromedp.Action {
	script := fmt.Sprintf(`(() => {
		const needle = %q;
		const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT);
		while (walker.nextNode()) {
			const node = walker.currentNode;
			if (!node.textContent.includes(needle)) continue;
			const el = node.parentElement;
			if (!el) continue;
			const style = window.getComputedStyle(el);
			if (style.display === 'none' || style.visibility === 'hidden') continue;
			if (el.getClientRects().length === 0) continue;
			return true;
		}
		return false;
	})()`, text)
	return chromedp.Evaluate(script, visible)
}

// ElementPresentAction checks whether a selector matches without waiting for
// visibility. A lookup failure on a live page means "not present", not an
// execution error; only context cancellation is surfaced.
func ElementPresentAction(selector string, present *bool) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var nodes []*cdp.Node
		err := chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)).Do(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			*present = false
			return nil
		}
		*present = len(nodes) > 0
		return nil
	})
}

// semanticTags are kept when simplifying a captured DOM. Everything else is
// unwrapped so its children still contribute text.
var semanticTags = map[string]bool{
	"html": true, "head": true, "body": true, "title": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "div": true, "span": true, "main": true, "section": true, "nav": true,
	"ul": true, "ol": true, "li": true,
	"a": true, "button": true, "input": true, "textarea": true, "select": true,
	"option": true, "label": true, "form": true, "img": true,
	"strong": true, "em": true, "pre": true, "code": true,
}

// voidTags never get a closing tag in the simplified output.
var voidTags = map[string]bool{"input": true, "img": true}

var keptAttrs = map[string]bool{
	"href": true, "src": true, "alt": true, "title": true,
	"id": true, "class": true, "name": true, "type": true,
	"value": true, "placeholder": true, "role": true, "aria-label": true,
}

// Simplify reduces a captured HTML document to its semantic skeleton:
// scripts, styles, and presentation-only attributes are dropped, text is
// whitespace-collapsed. The result is what gets written next to the
// screenshot as the DOM artifact.
func Simplify(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := writeSimplified(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeSimplified(w io.Writer, n *html.Node) error {
	switch n.Type {
	case html.ErrorNode, html.CommentNode, html.DoctypeNode:
		return nil
	case html.TextNode:
		trimmed := strings.Join(strings.Fields(n.Data), " ")
		if trimmed != "" {
			if _, err := io.WriteString(w, html.EscapeString(trimmed)+" "); err != nil {
				return err
			}
		}
		return nil
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" || n.Data == "noscript" ||
			n.Data == "meta" || n.Data == "link" || n.Data == "svg" {
			return nil
		}
		if semanticTags[n.Data] {
			if _, err := io.WriteString(w, "<"+n.Data); err != nil {
				return err
			}
			for _, a := range n.Attr {
				if !keptAttrs[a.Key] {
					continue
				}
				val := strings.TrimSpace(a.Val)
				if val == "" && a.Key != "value" {
					continue
				}
				if _, err := io.WriteString(w, " "+a.Key+"=\""+html.EscapeString(val)+"\""); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, ">"); err != nil {
				return err
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := writeSimplified(w, c); err != nil {
			return err
		}
	}

	if n.Type == html.ElementNode && semanticTags[n.Data] && !voidTags[n.Data] {
		if _, err := io.WriteString(w, "</"+n.Data+">"); err != nil {
			return err
		}
	}
	return nil
}
