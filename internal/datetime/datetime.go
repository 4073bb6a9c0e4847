// Package datetime turns user supplied start and end times into wall-clock
// values for an event's timezone. Besides the layouts understood by
// timetree.ParseWallClock it accepts English phrases such as
// "tomorrow at 10am" or "next friday 18:30".
package datetime

import (
	"errors"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/teemow/timetree/internal/timetree"
)

// Parser resolves relative phrases against a reference time.
type Parser struct {
	w   *when.Parser
	now func() time.Time
}

// NewParser returns a Parser that resolves phrases against the current time.
func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w, now: time.Now}
}

// WithNow replaces the clock used as reference for relative phrases.
func (p *Parser) WithNow(now func() time.Time) *Parser {
	p.now = now
	return p
}

// Parse returns value as a wall-clock time in zone. Absolute timestamps win;
// anything else is handed to the phrase parser, resolved relative to now in
// zone and truncated to the minute. An empty zone means
// timetree.DefaultTimezone.
func (p *Parser) Parse(value, zone string) (time.Time, error) {
	t, err := timetree.ParseWallClock(value, zone)
	if err == nil {
		return t, nil
	}
	var argErr *timetree.InvalidArgumentError
	if !errors.As(err, &argErr) || argErr.Argument != "time" {
		return time.Time{}, err
	}

	if zone == "" {
		zone = timetree.DefaultTimezone
	}
	loc, lerr := time.LoadLocation(zone)
	if lerr != nil {
		return time.Time{}, err
	}
	res, perr := p.w.Parse(value, p.now().In(loc))
	if perr != nil {
		return time.Time{}, &timetree.InvalidArgumentError{Op: "parse time", Argument: "time", Reason: perr.Error()}
	}
	if res == nil {
		return time.Time{}, &timetree.InvalidArgumentError{
			Op:       "parse time",
			Argument: "time",
			Reason:   fmt.Sprintf("%q is neither a timestamp nor a recognised phrase", value),
		}
	}
	// Phrases carry no seconds; drop the ones inherited from now.
	t = res.Time.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
