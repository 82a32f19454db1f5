package main

import (
	"strings"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(slotTimeFormat, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed
}

func TestBuildEmail(t *testing.T) {
	t.Run("singular subject for one time", func(t *testing.T) {
		msg, err := buildEmail("San Francisco Enrollment Center", []time.Time{
			mustTime(t, "2021-12-20T08:00"),
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(string(msg), "Subject: [Global Entry Scanner] New Appointment Available on: 2021-12-20") {
			t.Errorf("Subject mismatch, got:\n%s", string(msg))
		}
	})

	t.Run("plural subject for several times", func(t *testing.T) {
		msg, err := buildEmail("San Francisco Enrollment Center", []time.Time{
			mustTime(t, "2021-12-20T08:00"),
			mustTime(t, "2021-12-20T09:15"),
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(string(msg), "Subject: [Global Entry Scanner] New Appointments Available on: 2021-12-20") {
			t.Errorf("Subject mismatch, got:\n%s", string(msg))
		}
	})

	t.Run("groups times under their dates", func(t *testing.T) {
		msg, err := buildEmail("San Francisco Enrollment Center", []time.Time{
			mustTime(t, "2021-12-20T08:00"),
			mustTime(t, "2021-12-20T09:15"),
			mustTime(t, "2021-12-22T14:30"),
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		body := string(msg)
		for _, expected := range []string{"2021-12-20", "2021-12-22", "08:00", "09:15", "14:30", "San Francisco Enrollment Center"} {
			if !strings.Contains(body, expected) {
				t.Errorf("Expected message to contain %q, got:\n%s", expected, body)
			}
		}
		if strings.Count(body, "<b>2021-12-20</b>") != 1 {
			t.Errorf("Expected one date heading per day, got:\n%s", body)
		}
	})

	t.Run("sets html mime headers", func(t *testing.T) {
		msg, err := buildEmail("San Francisco Enrollment Center", []time.Time{
			mustTime(t, "2021-12-20T08:00"),
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !strings.Contains(string(msg), `Content-Type: text/html; charset="UTF-8";`) {
			t.Errorf("Expected html mime headers, got:\n%s", string(msg))
		}
	})

	t.Run("rejects an empty time list", func(t *testing.T) {
		if _, err := buildEmail("San Francisco Enrollment Center", nil); err == nil {
			t.Errorf("Expected an error for an empty time list")
		}
	})
}

func TestNotifyRecipients(t *testing.T) {
	times := []time.Time{}

	t.Run("sends to the configured recipient", func(t *testing.T) {
		scanner, recorder := newTestScanner(t, testConfig(), serveSlots("[]"))
		err := scanner.notify(append(times, mustTime(t, "2021-12-20T08:00")))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(recorder.to) != 1 || len(recorder.to[0]) != 1 || recorder.to[0][0] != "recipient@example.com" {
			t.Errorf("Expected a single recipient, got %+v", recorder.to)
		}
	})

	t.Run("includes the sms gateway address when configured", func(t *testing.T) {
		config := testConfig()
		config.Watch.SMSRecipient = "1234567890@txt.att.net"
		scanner, recorder := newTestScanner(t, config, serveSlots("[]"))
		err := scanner.notify(append(times, mustTime(t, "2021-12-20T08:00")))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(recorder.to) != 1 || len(recorder.to[0]) != 2 || recorder.to[0][1] != "1234567890@txt.att.net" {
			t.Errorf("Expected recipient plus sms gateway, got %+v", recorder.to)
		}
	})
}
