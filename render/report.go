package render

import (
	"fmt"
	"io"
	"os"

	"github.com/tsawler/pagecrop/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const reportStyle = `body { font-family: sans-serif; margin: 16px; }
.page { position: relative; border: 1px solid #999; }
.page img { position: absolute; left: 0; top: 0; }
.el { position: absolute; box-sizing: border-box; }
.text { border: 1px solid rgba(0, 0, 255, 0.6); }
.image { border: 1px solid rgba(0, 160, 0, 0.8); }
.line { border: 1px dashed rgba(255, 0, 0, 0.6); }
.rectangle { border: 1px dotted rgba(120, 120, 120, 0.8); }
table { border-collapse: collapse; margin-top: 16px; }
td, th { border: 1px solid #ccc; padding: 2px 6px; text-align: left; }`

// WriteHTMLReport writes an HTML page that shows the rendered PNG with a
// box over every element, followed by a table of the elements. imageSrc
// is the PNG's path relative to the report.
func WriteHTMLReport(w io.Writer, res *Result, imageSrc string) error {
	size := res.Image.Bounds().Size()

	page := element(atom.Div, "class", "page", "style", fmt.Sprintf("width:%dpx;height:%dpx", size.X, size.Y))
	page.AppendChild(element(atom.Img, "src", imageSrc,
		"width", fmt.Sprint(size.X), "height", fmt.Sprint(size.Y), "alt", "rendered page"))

	table := element(atom.Table)
	header := element(atom.Tr)
	for _, h := range []string{"#", "kind", "x", "y", "width", "height", "text"} {
		header.AppendChild(withText(element(atom.Th), h))
	}
	table.AppendChild(header)

	for i, e := range res.Elements {
		x, y, w, h := overlayBox(e)
		box := element(atom.Div,
			"class", "el "+e.Kind.String(),
			"style", fmt.Sprintf("left:%dpx;top:%dpx;width:%dpx;height:%dpx", x, y, w, h),
			"title", fmt.Sprintf("%d %s %s", i, e.Kind, e.Text))
		page.AppendChild(box)

		row := element(atom.Tr)
		for _, v := range []string{
			fmt.Sprint(i), e.Kind.String(),
			fmt.Sprint(e.X), fmt.Sprint(e.Y), fmt.Sprint(e.Width), fmt.Sprint(e.Height),
			e.Text,
		} {
			row.AppendChild(withText(element(atom.Td), v))
		}
		table.AppendChild(row)
	}

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), "pagecrop render"))
	head.AppendChild(withText(element(atom.Style), reportStyle))

	body := element(atom.Body)
	body.AppendChild(page)
	body.AppendChild(table)

	root := element(atom.Html)
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	return html.Render(w, doc)
}

func writeHTMLReportFile(path string, res *Result, imageSrc string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return WriteHTMLReport(f, res, imageSrc)
}

// overlayBox returns the top-left box covering e. Text is recorded at its
// baseline, so its box extends upwards.
func overlayBox(e model.RenderedElement) (x, y, w, h int) {
	switch e.Kind {
	case model.KindText:
		return e.X, e.Y - e.Height, e.Width, e.Height
	case model.KindLine:
		x, y = e.X, e.Y
		if e.X2 < x {
			x = e.X2
		}
		if e.Y2 < y {
			y = e.Y2
		}
		// keep hairlines visible
		return x, y, e.Width + 1, e.Height + 1
	default:
		return e.X, e.Y, e.Width, e.Height
	}
}

// element builds an element node from alternating attribute keys and
// values
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}
