package mailer

import (
	"fmt"
	"time"
)

// Template names carried in EmailJob.Template.
const (
	Welcome           = "welcome"
	LoginNotification = "login_notification"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Subject/Text override the template rendering when set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// NewWelcomeJob builds the email enqueued after a successful signup.
func NewWelcomeJob(to, name string) EmailJob {
	return EmailJob{
		To:       to,
		Template: Welcome,
		Data:     map[string]any{"Name": name},
	}
}

// NewLoginNotificationJob builds the email enqueued after every login.
func NewLoginNotificationJob(to, name, ip string, at time.Time) EmailJob {
	return EmailJob{
		To:       to,
		Template: LoginNotification,
		Data: map[string]any{
			"Name": name,
			"IP":   ip,
			"Time": at.UTC().Format(time.RFC1123),
		},
	}
}

// Render produces the subject and text body for a job's template.
func Render(job EmailJob) (subject, text string, err error) {
	if job.Subject != "" || job.Text != "" {
		return job.Subject, job.Text, nil
	}
	name := fmt.Sprintf("%v", job.Data["Name"])
	if name == "" || name == "<nil>" {
		name = "there"
	}
	switch job.Template {
	case Welcome:
		subject = "Welcome aboard"
		text = "Hi " + name + ",\n\nYour account was created successfully. You can now log in with your email and password.\n"
	case LoginNotification:
		subject = "New login to your account"
		text = fmt.Sprintf("Hi %s,\n\nA new login to your account was detected.\nIP: %v\nTime: %v\n\nIf this wasn't you, please change your password.\n",
			name, job.Data["IP"], job.Data["Time"])
	default:
		return "", "", fmt.Errorf("mailer: unknown template %q", job.Template)
	}
	return subject, text, nil
}
