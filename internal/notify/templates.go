package notify

import (
	"html/template"
	"strings"
	"time"
)

// BookingDetails feeds the confirmation templates.
type BookingDetails struct {
	UserName  string
	UserEmail string
	Purpose   string
	StartTime time.Time
	Duration  int
	// AmountRupees is the paid amount converted from minor units.
	AmountRupees int64
	PaymentID    string
}

var userConfirmedTmpl = template.Must(template.New("user_confirmed").Parse(`
<h2>Booking Confirmed!</h2>
<p>Hi {{.UserName}},</p>
<p>Your consultation slot has been successfully booked.</p>
<p><strong>Date:</strong> {{.StartTime.Format "Monday, 2 January 2006"}}</p>
<p><strong>Time:</strong> {{.StartTime.Format "03:04 PM"}}</p>
<p><strong>Duration:</strong> {{.Duration}} minutes</p>
<p><strong>Amount Paid:</strong> ₹{{.AmountRupees}}</p>
<p><strong>Payment ID:</strong> {{.PaymentID}}</p>
<p>You will receive the meeting link 15 minutes before the scheduled time.</p>
<p>Best regards,<br>Elite Meet Team</p>
`))

var adminConfirmedTmpl = template.Must(template.New("admin_confirmed").Parse(`
<h2>New Booking Received</h2>
<p>You have a new booking for your consultation slot.</p>
<p><strong>Client Name:</strong> {{.UserName}}</p>
<p><strong>Client Email:</strong> {{.UserEmail}}</p>
{{if .Purpose}}<p><strong>Purpose:</strong> {{.Purpose}}</p>{{end}}
<p><strong>Date:</strong> {{.StartTime.Format "Monday, 2 January 2006"}}</p>
<p><strong>Time:</strong> {{.StartTime.Format "03:04 PM"}}</p>
<p><strong>Duration:</strong> {{.Duration}} minutes</p>
<p><strong>Amount:</strong> ₹{{.AmountRupees}}</p>
<p>Please prepare for the scheduled consultation.</p>
<p>Best regards,<br>Elite Meet Team</p>
`))

var mentorshipConfirmedTmpl = template.Must(template.New("mentorship_confirmed").Parse(`
<h2>Welcome to the Mentorship Program!</h2>
<p>Dear {{.UserName}},</p>
<p>Congratulations! Your enrollment in the mentorship program has been confirmed.</p>
<p><strong>Amount Paid:</strong> ₹{{.AmountRupees}}</p>
<p><strong>Payment ID:</strong> {{.PaymentID}}</p>
<p>You will receive further instructions and access details via email shortly.</p>
<p>Best regards,<br>Elite Meet Team</p>
`))

func UserConfirmedMessage(d BookingDetails) Message {
	return Message{
		To:      d.UserEmail,
		Subject: "Booking Confirmed - Elite Meet",
		HTML:    render(userConfirmedTmpl, d),
	}
}

func AdminConfirmedMessage(to string, d BookingDetails) Message {
	return Message{
		To:      to,
		Subject: "New Booking Received - Elite Meet",
		HTML:    render(adminConfirmedTmpl, d),
	}
}

func MentorshipConfirmedMessage(d BookingDetails) Message {
	return Message{
		To:      d.UserEmail,
		Subject: "Mentorship Enrollment Confirmed - Elite Meet",
		HTML:    render(mentorshipConfirmedTmpl, d),
	}
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}
