package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

type Email struct {
	To      []string
	From    string
	Subject string
	Body    string
}

//go:embed templates/*
var templates embed.FS

type notificationMessageData struct {
	StudentName  string
	ClassSection string
	RollNumber   int
	BookTitle    string
	DueDate      string
	DaysOverdue  int
	DaysUntilDue int
}

// renderNotificationMessage produces the stored message body for a loan.
// The content is deterministic for a given loan and day: the same inputs
// render the same days-overdue value and the same text.
func (u Usecase) renderNotificationMessage(loan Loan, kind NotificationKind) (string, error) {
	if loan.Student == nil || loan.Book == nil {
		return "", fmt.Errorf("loan %s missing student or book", loan.ID)
	}

	name := "overdue_message.txt"
	if kind == KindReminder {
		name = "reminder_message.txt"
	}

	tmpl, err := template.ParseFS(templates, "templates/"+name)
	if err != nil {
		return "", err
	}

	today := startOfDay(u.now())
	due := startOfDay(loan.DueAt)

	data := notificationMessageData{
		StudentName:  loan.Student.Name,
		ClassSection: loan.Student.ClassName + "-" + loan.Student.Section,
		RollNumber:   loan.Student.RollNumber,
		BookTitle:    loan.Book.Title,
		DueDate:      loan.DueAt.Format("2006-01-02"),
		DaysOverdue:  daysBetween(due, today),
		DaysUntilDue: daysBetween(today, due),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type notificationEmailData struct {
	ContactName string
	Message     string
}

// buildNotificationEmail wraps the stored message in the salutation and
// closing template and addresses it to the resolved contact.
func (u Usecase) buildNotificationEmail(n Notification) (Email, error) {
	if n.Contact == nil {
		return Email{}, fmt.Errorf("notification %s missing contact", n.ID)
	}

	var (
		name    = "overdue_email.txt"
		subject = fmt.Sprintf("Library Notice: Overdue Book - Class %s-%s",
			n.Contact.ClassName, n.Contact.Section)
	)
	if n.Kind == KindReminder {
		name = "reminder_email.txt"
		subject = fmt.Sprintf("Library Notice: Book Due Soon - Class %s-%s",
			n.Contact.ClassName, n.Contact.Section)
	}

	tmpl, err := template.ParseFS(templates, "templates/"+name)
	if err != nil {
		return Email{}, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, notificationEmailData{
		ContactName: n.Contact.Name,
		Message:     n.Message,
	}); err != nil {
		return Email{}, err
	}

	return Email{
		To:      []string{n.Contact.Email},
		From:    u.from,
		Subject: subject,
		Body:    buf.String(),
	}, nil
}
