// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ical converts between iCalendar VTODO components and tasks.
package ical

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/pdiddy/merge-engine/pkg/types"
)

const (
	prodID = "-//merge-engine//EN"

	// tzidParam qualifies a local DATE-TIME with a named zone.
	tzidParam = "TZID"
)

// Decode reads every VTODO of every VCALENDAR in r. Other components
// (VEVENT, VTIMEZONE, VALARM inside a VTODO) are skipped.
func Decode(r io.Reader) ([]types.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading iCalendar: %w", err)
	}

	dec := goical.NewDecoder(bytes.NewReader(data))
	var (
		tasks     []types.Task
		calendars int
	)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar %d: %w", calendars+1, err)
		}
		calendars++
		if cal.Name != goical.CompCalendar {
			return nil, fmt.Errorf("parsing calendar %d: unexpected %s component", calendars, cal.Name)
		}
		for i, child := range cal.Children {
			if child.Name != goical.CompToDo {
				continue
			}
			t, err := taskFromComponent(child)
			if err != nil {
				return nil, fmt.Errorf("parsing calendar %d component %d: %w", calendars, i+1, err)
			}
			tasks = append(tasks, t)
		}
	}
	// The decoder reports a calendar cut short by end of input as a
	// plain io.EOF.
	if begun := countCalendars(data); begun > calendars {
		return nil, fmt.Errorf("parsing calendar %d: unterminated VCALENDAR", calendars+1)
	}
	return tasks, nil
}

// countCalendars counts the BEGIN:VCALENDAR lines in data.
func countCalendars(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		if strings.EqualFold(strings.TrimSpace(sc.Text()), "BEGIN:"+goical.CompCalendar) {
			n++
		}
	}
	return n
}

func taskFromComponent(c *goical.Component) (types.Task, error) {
	t := types.Task{Status: types.TaskNeedsAction}

	uid, err := c.Props.Text(goical.PropUID)
	if err != nil {
		return t, fmt.Errorf("UID: %w", err)
	}
	t.UID = types.StringPtr(strings.TrimSpace(uid))

	title, err := c.Props.Text(goical.PropSummary)
	if err != nil {
		return t, fmt.Errorf("SUMMARY: %w", err)
	}
	t.Title = strings.TrimSpace(title)

	if t.Description, err = c.Props.Text(goical.PropDescription); err != nil {
		return t, fmt.Errorf("DESCRIPTION: %w", err)
	}

	if p := c.Props.Get(goical.PropStatus); p != nil {
		t.Status = types.TaskStatus(strings.ToLower(strings.TrimSpace(p.Value)))
	}

	if p := c.Props.Get(goical.PropPriority); p != nil {
		prio, err := strconv.Atoi(strings.TrimSpace(p.Value))
		if err != nil || prio < 0 || prio > 9 {
			return t, fmt.Errorf("invalid PRIORITY %q", p.Value)
		}
		t.Priority = prio
	}

	if p := c.Props.Get(goical.PropDue); p != nil {
		due, err := dueTime(p)
		if err != nil {
			return t, fmt.Errorf("invalid DUE %q: %w", p.Value, err)
		}
		t.Due = &due
	}
	return t, nil
}

// dueTime accepts DATE, UTC DATE-TIME and floating DATE-TIME values.
// Floating times are read as UTC. A TZID the system does not know is
// dropped and the time treated as floating.
func dueTime(p *goical.Prop) (time.Time, error) {
	due, err := p.DateTime(time.UTC)
	if err != nil && p.Params.Get(tzidParam) != "" {
		floating := *p
		floating.Params = make(goical.Params, len(p.Params))
		for k, v := range p.Params {
			if k != tzidParam {
				floating.Params[k] = v
			}
		}
		due, err = floating.DateTime(time.UTC)
	}
	if err != nil {
		return time.Time{}, err
	}
	return due.UTC(), nil
}

// Encode writes tasks as a VCALENDAR of VTODO components. Due times are
// written in UTC. A task without a UID is written with its ID, or a fresh
// UUID when it has none, since every VTODO must carry one.
func Encode(w io.Writer, tasks []types.Task) error {
	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, prodID)

	stamp := time.Now().UTC()
	for _, t := range tasks {
		cal.Children = append(cal.Children, todoFromTask(t, stamp))
	}
	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("writing iCalendar: %w", err)
	}
	return nil
}

func todoFromTask(t types.Task, stamp time.Time) *goical.Component {
	todo := goical.NewComponent(goical.CompToDo)

	uid := t.ID
	if t.UID != nil && *t.UID != "" {
		uid = *t.UID
	}
	if uid == "" {
		uid = uuid.NewString()
	}
	todo.Props.SetText(goical.PropUID, uid)
	todo.Props.SetDateTime(goical.PropDateTimeStamp, stamp)
	todo.Props.SetText(goical.PropSummary, t.Title)
	if t.Description != "" {
		todo.Props.SetText(goical.PropDescription, t.Description)
	}
	if t.Status != "" {
		setRaw(todo.Props, goical.PropStatus, strings.ToUpper(string(t.Status)))
	}
	if t.Priority > 0 {
		setRaw(todo.Props, goical.PropPriority, strconv.Itoa(t.Priority))
	}
	if t.Due != nil {
		todo.Props.SetDateTime(goical.PropDue, t.Due.UTC())
	}
	return todo
}

func setRaw(props goical.Props, name, value string) {
	p := goical.NewProp(name)
	p.Value = value
	props.Set(p)
}
