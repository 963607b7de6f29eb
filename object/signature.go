package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature is an author or committer identity stamped on a Commit or Tag.
// Encoding follows git's wire form exactly:
// "Name <email> <unix-seconds> <+hhmm|-hhmm>".
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Encode renders the signature in git's wire form.
func (s Signature) Encode() string {
	_, offset := s.When.Zone()
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hh := offset / 3600
	mm := (offset % 3600) / 60
	return fmt.Sprintf("%s <%s> %d %c%02d%02d", s.Name, s.Email, s.When.Unix(), sign, hh, mm)
}

// ParseSignature parses a git-wire-form signature line (without the leading
// "author "/"committer "/"tagger " keyword).
func ParseSignature(line string) (Signature, error) {
	lt := strings.LastIndexByte(line, '<')
	gt := strings.LastIndexByte(line, '>')
	if lt < 0 || gt < 0 || gt < lt {
		return Signature{}, fmt.Errorf("object: malformed signature %q", line)
	}
	name := strings.TrimSpace(line[:lt])
	email := line[lt+1 : gt]
	rest := strings.TrimSpace(line[gt+1:])
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("object: malformed signature timestamp %q", rest)
	}
	sec, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("object: malformed signature timestamp %q: %w", fields[0], err)
	}
	tz := fields[1]
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return Signature{}, fmt.Errorf("object: malformed signature timezone %q", tz)
	}
	hh, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return Signature{}, fmt.Errorf("object: malformed signature timezone %q: %w", tz, err)
	}
	mm, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return Signature{}, fmt.Errorf("object: malformed signature timezone %q: %w", tz, err)
	}
	offset := hh*3600 + mm*60
	if tz[0] == '-' {
		offset = -offset
	}
	loc := time.FixedZone(tz, offset)
	return Signature{Name: name, Email: email, When: time.Unix(sec, 0).In(loc)}, nil
}
