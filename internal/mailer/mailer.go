package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"text/template"
)

const (
	FromName            = "Mogges Store"
	maxRetries          = 3
	UserWelcomeTemplate = "welcome.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, email string, data any) error
}

type message struct {
	subject   string
	plainBody string
	htmlBody  string
}

func render(templateFile string, data any) (*message, error) {
	path := "templates/" + templateFile

	tmpl, err := template.ParseFS(FS, path)
	if err != nil {
		return nil, err
	}

	var subject, plain bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, err
	}
	if err := tmpl.ExecuteTemplate(&plain, "plainBody", data); err != nil {
		return nil, err
	}

	htmlTmpl, err := htmltemplate.ParseFS(FS, path)
	if err != nil {
		return nil, err
	}
	var html bytes.Buffer
	if err := htmlTmpl.ExecuteTemplate(&html, "htmlBody", data); err != nil {
		return nil, err
	}

	return &message{subject: subject.String(), plainBody: plain.String(), htmlBody: html.String()}, nil
}
