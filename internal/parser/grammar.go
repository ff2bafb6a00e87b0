package parser

import (
	"regexp"
	"strings"
	"time"
)

// Grammar is one line header format. Pattern must define the named groups
// date, time and text; sender is optional.
type Grammar struct {
	Name    string
	Pattern *regexp.Regexp
}

const (
	senderPart = `(?:(?P<sender>[^:]+?): )?`
	textPart   = `(?P<text>.*)$`
	clock      = `\d{1,2}:\d{2}(?::\d{2})?`
	meridiem   = `\s?[AaPp]\.?[Mm]\.?`
)

// Grammars are tried in order; the first one whose timestamp parses wins.
var Grammars = []Grammar{
	{
		Name:    "dmy_24h",
		Pattern: regexp.MustCompile(`^(?P<date>\d{1,2}/\d{1,2}/\d{2,4}),? (?P<time>` + clock + `) - ` + senderPart + textPart),
	},
	{
		Name:    "dmy_12h",
		Pattern: regexp.MustCompile(`^(?P<date>\d{1,2}/\d{1,2}/\d{2,4}),? (?P<time>` + clock + meridiem + `) - ` + senderPart + textPart),
	},
	{
		Name:    "bracketed",
		Pattern: regexp.MustCompile(`^\[(?P<date>\d{1,2}[/.]\d{1,2}[/.]\d{2,4}),? (?P<time>` + clock + `(?:` + meridiem + `)?)\] (?P<sender>[^:]+?): ` + textPart),
	},
	{
		Name:    "dotted",
		Pattern: regexp.MustCompile(`^(?P<date>\d{1,2}\.\d{1,2}\.\d{2,4}),? (?P<time>` + clock + `) - ` + senderPart + textPart),
	},
	{
		Name:    "iso",
		Pattern: regexp.MustCompile(`^(?P<date>\d{4}-\d{2}-\d{2}),? (?P<time>\d{2}:\d{2}(?::\d{2})?) - ` + senderPart + textPart),
	},
}

// DateLayouts and TimeLayouts are combined as "date time" and tried in order.
// Day-first layouts come before month-first ones.
var DateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"1/2/2006",
	"1/2/06",
	"2.1.2006",
	"2.1.06",
	"2006-01-02",
}

var TimeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"3:04:05PM",
}

func normalizeClock(s string) string {
	s = strings.ToUpper(strings.ReplaceAll(s, ".", ""))
	return strings.TrimSpace(s)
}

// parseTimestamp returns the first layout combination that accepts date and
// clock, interpreted as UTC.
func parseTimestamp(date, clockText string) (time.Time, error) {
	clockText = normalizeClock(clockText)
	value := date + " " + clockText
	for _, dl := range DateLayouts {
		for _, tl := range TimeLayouts {
			if ts, err := time.Parse(dl+" "+tl, value); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, &DateTimeParseError{Date: date, Time: clockText}
}

type header struct {
	grammar   string
	timestamp time.Time
	sender    string
	text      string
}

// matchHeader tries every grammar against line. A grammar that matches but
// whose timestamp fails to parse is skipped in favour of the next one.
func matchHeader(line string) (header, []error, bool) {
	var errs []error
	for _, g := range Grammars {
		m := g.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, err := parseTimestamp(group(g.Pattern, m, "date"), group(g.Pattern, m, "time"))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rawSender, text := group(g.Pattern, m, "sender"), group(g.Pattern, m, "text")
		if rawSender != "" && systemPhrase.MatchString(rawSender) {
			// "Alice changed the subject to "a: b"" has no sender
			text = rawSender + ": " + text
			rawSender = ""
		}
		return header{
			grammar:   g.Name,
			timestamp: ts,
			sender:    strings.TrimSpace(rawSender),
			text:      text,
		}, errs, true
	}
	return header{}, errs, false
}

func group(re *regexp.Regexp, m []string, name string) string {
	if i := re.SubexpIndex(name); i >= 0 && i < len(m) {
		return m[i]
	}
	return ""
}
