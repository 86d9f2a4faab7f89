package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		TextContent string
		HTMLContent string
	}

	// EmailTemplate pairs the text and html versions of a templated email.
	EmailTemplate struct {
		Text *texttmpl.Template
		HTML *htmltmpl.Template
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// NewEmailTemplate parses the text and html bodies of an email.
// The HTML body is optional.
func NewEmailTemplate(name, text, html string) EmailTemplate {
	tmpl := EmailTemplate{
		Text: texttmpl.Must(texttmpl.New(name + ".txt").Option("missingkey=error").Parse(text)),
	}
	if html != "" {
		tmpl.HTML = htmltmpl.Must(htmltmpl.New(name + ".gohtml").Option("missingkey=error").Parse(html))
	}
	return tmpl
}

// Render fills the message contents from the template.
func (m *EmailMessage) Render(tmpl EmailTemplate, conf *Config, data interface{}) error {
	ctxData := ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            data,
	}

	var buff bytes.Buffer
	if err := tmpl.Text.Execute(&buff, ctxData); err != nil {
		return errors.Wrap(err, "rendering text content")
	}
	m.TextContent = buff.String()

	if tmpl.HTML != nil {
		buff.Reset()
		if err := tmpl.HTML.Execute(&buff, ctxData); err != nil {
			return errors.Wrap(err, "rendering html content")
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
