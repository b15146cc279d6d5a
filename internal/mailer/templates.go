package mailer

import (
	"bytes"
	"html/template"
)

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(`
<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
	<h2 style="color: #333;">Welcome to Loopr, {{.FirstName}}!</h2>
	<p>Your account <strong>{{.Username}}</strong> is ready. You can now sign in to the dashboard.</p>
	<p style="color: #aaa; font-size: 12px;">If you didn't create this account, please contact support.</p>
</div>`))

	passwordChangedTmpl = template.Must(template.New("password").Parse(`
<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
	<h2 style="color: #333;">Your password was changed</h2>
	<p>Hi {{.FirstName}}, the password for <strong>{{.Username}}</strong> was just changed.</p>
	<p style="color: #aaa; font-size: 12px;">If this wasn't you, reset your password immediately.</p>
</div>`))
)

type recipient struct {
	FirstName string
	Username  string
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func WelcomeMessage(to, firstName, username string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Loopr",
		HTML:    render(welcomeTmpl, recipient{FirstName: firstName, Username: username}),
	}
}

func PasswordChangedMessage(to, firstName, username string) Message {
	return Message{
		To:      to,
		Subject: "Your Loopr password was changed",
		HTML:    render(passwordChangedTmpl, recipient{FirstName: firstName, Username: username}),
	}
}
