package main

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"
)

const EMAIL_TEMPLATE = `<html><body>
<p>New appointment{{.Plural}} available at {{.Location}}:</p>
{{range .Days}}<p><b>{{.Date}}</b></p>
<ul>
{{range .Times}}<li>{{.}}</li>
{{end}}</ul>
{{end}}</body></html>`

type emailDay struct {
	Date  string
	Times []string
}

type emailData struct {
	Location string
	Plural   string
	Days     []emailDay
}

// buildEmail renders the full message (subject, MIME headers, HTML body)
// for the given qualifying times, which must be sorted ascending.
func buildEmail(location string, times []time.Time) ([]byte, error) {
	if len(times) == 0 {
		return nil, errors.New("no qualifying times to notify about")
	}
	t, err := template.New("Email").Parse(EMAIL_TEMPLATE)
	if err != nil {
		return nil, err
	}

	data := emailData{Location: location}
	if len(times) > 1 {
		data.Plural = "s"
	}
	for _, tm := range times {
		date := tm.Format(cutoffDateFormat)
		if len(data.Days) == 0 || data.Days[len(data.Days)-1].Date != date {
			data.Days = append(data.Days, emailDay{Date: date})
		}
		data.Days[len(data.Days)-1].Times = append(data.Days[len(data.Days)-1].Times, tm.Format("15:04"))
	}

	var body bytes.Buffer
	mimeHeaders := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	body.Write([]byte(fmt.Sprintf("Subject: [Global Entry Scanner] New Appointment%s Available on: %s \n%s\n\n",
		data.Plural, data.Days[0].Date, mimeHeaders)))
	if err := t.Execute(&body, data); err != nil {
		return nil, err
	}
	return body.Bytes(), nil
}

// notify sends one email for the given times to the configured recipient,
// plus the SMS gateway address when one is configured.
func (s *Scanner) notify(times []time.Time) error {
	emailBytes, err := buildEmail(s.locationName, times)
	if err != nil {
		return err
	}
	recipients := []string{s.config.Watch.Recipient}
	if sms := strings.TrimSpace(s.config.Watch.SMSRecipient); sms != "" {
		recipients = append(recipients, sms)
	}
	s.logger.Info(fmt.Sprintf("sending email to: %+v", recipients))
	smtpConfig := s.config.Notificationconfigs.SMTP
	auth := smtp.PlainAuth("", smtpConfig.Email, smtpConfig.Password, smtpConfig.Host)
	return s.sendMail(smtpConfig.Host+":"+smtpConfig.Port, auth, smtpConfig.Email, recipients, emailBytes)
}
