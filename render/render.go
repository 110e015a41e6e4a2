// Package render decides how a document's bytes are presented to clients.
package render

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	qe "wuyrush.io/quire/errors"
	md "wuyrush.io/quire/models"
)

// Content is the presentation of a document's bytes.
type Content struct {
	// Type is the content type the raw body is served with. Empty when the
	// document renders into an HTML fragment instead of a raw body.
	Type string
	Body []byte
	// Fragment holds rendered markup for kinds presented inside an HTML page.
	Fragment template.HTML
}

// the markdown converter configuration never changes and goldmark.Markdown is
// safe to share across requests, so build it once
var (
	mdOnce      sync.Once
	mdConverter goldmark.Markdown
	mdPolicy    *bluemonday.Policy
)

func markdown() (goldmark.Markdown, *bluemonday.Policy) {
	mdOnce.Do(func() {
		mdConverter = goldmark.New(goldmark.WithExtensions(extension.GFM))
		mdPolicy = bluemonday.UGCPolicy()
	})
	return mdConverter, mdPolicy
}

// Render presents document bytes according to the document kind. Plain text
// and images pass through untouched with their content type; markdown becomes
// a sanitized HTML fragment for the caller to embed in a page. Unknown kinds
// are rejected instead of silently producing empty output.
func Render(kind md.DocKind, data []byte) (*Content, *qe.Err) {
	switch kind {
	case md.KindPlainText:
		return &Content{Type: "text/plain", Body: data}, nil
	case md.KindJpeg:
		return &Content{Type: "image/jpeg", Body: data}, nil
	case md.KindPng:
		return &Content{Type: "image/png", Body: data}, nil
	case md.KindMarkdown:
		frag, err := Markdown(data)
		if err != nil {
			return nil, err
		}
		return &Content{Fragment: frag}, nil
	default:
		return nil, qe.NewInvalid("document type not supported")
	}
}

// Markdown converts markdown source into a sanitized HTML fragment.
func Markdown(src []byte) (template.HTML, *qe.Err) {
	conv, policy := markdown()
	var buf bytes.Buffer
	if err := conv.Convert(src, &buf); err != nil {
		return "", qe.NewServiceFailure("error rendering markdown").WithCause(err)
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}
