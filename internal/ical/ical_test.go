// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ical

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/merge-engine/pkg/types"
)

const sampleCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Example//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:event-1\r\n" +
	"SUMMARY:Not a task\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VTODO\r\n" +
	"UID:todo-1@example.com\r\n" +
	"SUMMARY:Submit report\\, final\r\n" +
	"DESCRIPTION:Quarterly numbers\\nand notes\r\n" +
	"STATUS:IN-PROCESS\r\n" +
	"PRIORITY:2\r\n" +
	"DUE:20260415T170000Z\r\n" +
	"BEGIN:VALARM\r\n" +
	"SUMMARY:Alarm text must not leak\r\n" +
	"END:VALARM\r\n" +
	"END:VTODO\r\n" +
	"BEGIN:VTODO\r\n" +
	"SUMMARY:Buy milk\r\n" +
	"DUE;VALUE=DATE:20260420\r\n" +
	"END:VTODO\r\n" +
	"END:VCALENDAR\r\n"

func TestDecode(t *testing.T) {
	tasks, err := Decode(strings.NewReader(sampleCalendar))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	report := tasks[0]
	require.NotNil(t, report.UID)
	assert.Equal(t, "todo-1@example.com", *report.UID)
	assert.Equal(t, "Submit report, final", report.Title)
	assert.Equal(t, "Quarterly numbers\nand notes", report.Description)
	assert.Equal(t, types.TaskInProcess, report.Status)
	assert.Equal(t, 2, report.Priority)
	require.NotNil(t, report.Due)
	assert.True(t, report.Due.Equal(time.Date(2026, 4, 15, 17, 0, 0, 0, time.UTC)))

	milk := tasks[1]
	assert.Nil(t, milk.UID)
	assert.Equal(t, "Buy milk", milk.Title)
	assert.Equal(t, types.TaskNeedsAction, milk.Status)
	require.NotNil(t, milk.Due)
	assert.True(t, milk.Due.Equal(time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)))
}

func calendar(body string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Example//EN\r\n" + body + "END:VCALENDAR\r\n"
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unterminated", "BEGIN:VCALENDAR\r\nBEGIN:VTODO\r\nSUMMARY:x\r\n", "unterminated"},
		{"bad priority", calendar("BEGIN:VTODO\r\nPRIORITY:high\r\nEND:VTODO\r\n"), "PRIORITY"},
		{"priority out of range", calendar("BEGIN:VTODO\r\nPRIORITY:12\r\nEND:VTODO\r\n"), "PRIORITY"},
		{"bad due", calendar("BEGIN:VTODO\r\nDUE:2026-04-15 17:00\r\nEND:VTODO\r\n"), "DUE"},
		{"not a calendar", "BEGIN:VTODO\r\nSUMMARY:x\r\nEND:VTODO\r\n", "calendar 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	tasks, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDecodeFloatingDue(t *testing.T) {
	input := calendar("BEGIN:VTODO\r\n" +
		"SUMMARY:Floating\r\n" +
		"DUE:20260415T170000\r\n" +
		"END:VTODO\r\n" +
		"BEGIN:VTODO\r\n" +
		"SUMMARY:Unknown zone\r\n" +
		"DUE;TZID=Nowhere/Special:20260415T170000\r\n" +
		"END:VTODO\r\n")

	tasks, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	want := time.Date(2026, 4, 15, 17, 0, 0, 0, time.UTC)
	for _, task := range tasks {
		require.NotNil(t, task.Due, task.Title)
		assert.True(t, task.Due.Equal(want), task.Title)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	uid := "todo-42"
	due := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	in := []types.Task{
		{UID: &uid, Title: "Plan; review, ship", Description: "two\nlines", Status: types.TaskCompleted, Priority: 5, Due: &due},
		{ID: "local-7", Title: "Someday", Status: types.TaskNeedsAction},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))
	encoded := buf.String()
	assert.True(t, strings.HasPrefix(encoded, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, encoded, "VERSION:2.0\r\n")
	assert.Contains(t, encoded, "PRODID:"+prodID+"\r\n")
	assert.Contains(t, encoded, "DTSTAMP:")

	out, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].UID)
	assert.Equal(t, uid, *out[0].UID)
	assert.Equal(t, in[0].Title, out[0].Title)
	assert.Equal(t, in[0].Description, out[0].Description)
	assert.Equal(t, in[0].Status, out[0].Status)
	assert.Equal(t, in[0].Priority, out[0].Priority)
	require.NotNil(t, out[0].Due)
	assert.True(t, out[0].Due.Equal(due))

	require.NotNil(t, out[1].UID)
	assert.Equal(t, "local-7", *out[1].UID)
	assert.Equal(t, "Someday", out[1].Title)
	assert.Equal(t, types.TaskNeedsAction, out[1].Status)
	assert.Zero(t, out[1].Priority)
	assert.Nil(t, out[1].Due)
}

func TestEncodeGeneratesUID(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []types.Task{{Title: "No identity"}}))

	out, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].UID)
	assert.NotEmpty(t, *out[0].UID)
}
