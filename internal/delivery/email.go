package delivery

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/todoapp/notifier/internal/domain"
)

const dueDateLayout = "Mon, 02 Jan 2006 15:04 MST"

var textTemplate = template.Must(template.New("text").Parse(
	`Hello {{.Name}},

{{.Message}}
{{range .Tasks}}
- {{.Title}} ({{.List}}), due {{.Due}}{{end}}

You are receiving this because you have notifications enabled for your to-do lists.
`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("html").Parse(
	`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
<p>Hello {{.Name}},</p>
<p>{{.Message}}</p>
<table cellpadding="6" style="border-collapse: collapse;">
<tr><th align="left">Task</th><th align="left">List</th><th align="left">Due</th></tr>
{{range .Tasks}}<tr><td>{{.Title}}</td><td>{{.List}}</td><td>{{.Due}}</td></tr>
{{end}}</table>
<p style="color: #888; font-size: small;">You are receiving this because you have notifications enabled for your to-do lists.</p>
</body>
</html>
`))

type emailTask struct {
	Title string
	List  string
	Due   string
}

type emailData struct {
	Name    string
	Message string
	Tasks   []emailTask
}

// RenderEmail builds the email for n addressed to contact. Due dates are
// shown in loc; a nil loc means UTC.
func RenderEmail(n domain.GroupedNotification, contact domain.Contact, loc *time.Location) (*Mail, error) {
	if loc == nil {
		loc = time.UTC
	}

	data := emailData{
		Name:    contact.DisplayName(),
		Message: n.Message,
		Tasks:   make([]emailTask, 0, len(n.Entries)),
	}
	for _, e := range n.Entries {
		list := ""
		if e.Task.List != nil {
			list = e.Task.List.Title
		}
		data.Tasks = append(data.Tasks, emailTask{
			Title: e.Task.Title,
			List:  list,
			Due:   e.Task.DueAt.In(loc).Format(dueDateLayout),
		})
	}

	var text, html bytes.Buffer
	if err := textTemplate.Execute(&text, data); err != nil {
		return nil, err
	}
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return nil, err
	}

	return &Mail{
		To:       []string{contact.Email},
		Subject:  n.Subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
