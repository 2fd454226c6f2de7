package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// PrintLastRequest writes "METHOD: URL" for the most recent exchange.
func PrintLastRequest(w io.Writer, c *Client) {
	last, ok := c.Last()
	if !ok {
		fmt.Fprintln(w, "No request was made.")
		return
	}
	fmt.Fprintf(w, "%s: %s\n", last.Method, last.URL)
}

// PrintFailure writes the report shown when a test fails: the last request
// line followed by the full response.
func PrintFailure(w io.Writer, c *Client) {
	last, ok := c.Last()
	if !ok {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Failure! when making the following request:")
	PrintLastRequest(w, c)
	fmt.Fprintln(w)
	DebugResponse(w, last.Response)
}

// DebugResponse writes the status line, headers and body of resp.
//
// JSON bodies are pretty-printed, or written raw when they do not parse.
// A full HTML page is summarised by its h1 and h2 headings. Anything else
// is written as is.
func DebugResponse(w io.Writer, resp *Response) {
	fmt.Fprintf(w, "%s %s\n", resp.Proto, resp.Status)

	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Header[k] {
			fmt.Fprintf(w, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintln(w)

	contentType := resp.Header.Get("Content-Type")
	switch {
	case isJSON(contentType):
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, resp.Body, "", "    "); err != nil {
			fmt.Fprintln(w, string(resp.Body))
			return
		}
		fmt.Fprintln(w, pretty.String())
	case bytes.Contains(resp.Body, []byte("</body>")):
		printHTMLSummary(w, resp.Body)
	default:
		fmt.Fprintln(w, string(resp.Body))
	}
}

func isJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.TrimSpace(mediaType)
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

var whitespace = regexp.MustCompile(`\s+`)

func printHTMLSummary(w io.Writer, body []byte) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		fmt.Fprintln(w, string(body))
		return
	}

	fmt.Fprintln(w, "HTML Summary (h1 and h2):")
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2") {
			heading := whitespace.ReplaceAllString(strings.TrimSpace(textOf(n)), " ")
			if heading != "" {
				fmt.Fprintln(w, heading)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	fmt.Fprintln(w)
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
	}
	return sb.String()
}
