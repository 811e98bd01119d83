// Package labels renders domestic shipping labels by substituting order
// fields into a fixed-layout text template, the contract the downstream
// label collaborator expects.
package labels

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mittenshop/fulfillment/internal/domain/manifest"
)

// Sender details printed on the From half of every label.
const (
	senderCompany = "Eczema Mitten Private Limited"
	senderAddress = "#04-23, Block 235, Choa Chu Kang Central"
	senderPostal  = "680235"
	senderPhone   = "+65 8889 5607"
)

// DefaultTemplate is the placeholder contract for one label. Each submitted
// record renders one block; blocks are separated by a form-feed so the
// printing collaborator can split pages.
const DefaultTemplate = `To: {{.OrderNumber}} {{.RecipientName}}
Contact: {{.Phone}}
{{.Address1}}{{if .Address2}}
{{.Address2}}{{end}}
Singapore {{.PostalCode}}

From: ` + senderCompany + `
Contact: ` + senderPhone + `
` + senderAddress + `
Singapore ` + senderPostal + `

Item: {{.Quantity}} {{.SizeLetter}} {{.Material}} Eczema Mitten
`

// TemplateRenderer accumulates rendered labels for one run. It implements
// pipeline.LabelSink.
type TemplateRenderer struct {
	tmpl  *template.Template
	title cases.Caser

	mu  sync.Mutex
	buf bytes.Buffer
	n   int
}

// NewTemplateRenderer creates a renderer from a template string, falling
// back to DefaultTemplate when tmpl is empty.
func NewTemplateRenderer(tmpl string) (*TemplateRenderer, error) {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	t, err := template.New("label").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing label template: %w", err)
	}
	return &TemplateRenderer{
		tmpl:  t,
		title: cases.Title(language.English),
	}, nil
}

// Submit renders one label record and appends it to the batch.
func (r *TemplateRenderer) Submit(_ context.Context, rec manifest.LabelRecord) error {
	rec.RecipientName = r.title.String(rec.RecipientName)

	var block bytes.Buffer
	if err := r.tmpl.Execute(&block, rec); err != nil {
		return fmt.Errorf("rendering label for order %s: %w", rec.OrderNumber, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n > 0 {
		r.buf.WriteByte('\f')
	}
	r.buf.Write(block.Bytes())
	r.n++
	return nil
}

// Bytes returns the rendered label batch.
func (r *TemplateRenderer) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

// Count returns how many labels were submitted.
func (r *TemplateRenderer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}
