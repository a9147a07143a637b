package valueobjects

import (
	"net/mail"
	"regexp"
	"strings"
)

// bracketPattern extracts an address out of a display string like "Jane <jane@x.com>"
var bracketPattern = regexp.MustCompile(`<([^<>]+)>`)

// Sender is the value object behind contact attribution.
// Inbound messages carry the sender either as a structured address
// (name + address) or as a single display string; both collapse here.
type Sender struct {
	Name    string
	Address string
	Raw     string
}

// ParseSender builds a Sender from a raw display string
func ParseSender(raw string) Sender {
	trimmed := strings.TrimSpace(raw)
	if addr, err := mail.ParseAddress(trimmed); err == nil {
		return Sender{Name: addr.Name, Address: addr.Address, Raw: raw}
	}
	if m := bracketPattern.FindStringSubmatch(trimmed); m != nil {
		name := strings.TrimSpace(strings.Split(trimmed, "<")[0])
		name = strings.Trim(name, `"`)
		return Sender{Name: name, Address: strings.TrimSpace(m[1]), Raw: raw}
	}
	// A plain string is itself the address
	return Sender{Address: trimmed, Raw: raw}
}

// SenderFromParts builds a Sender from a structured address object
func SenderFromParts(name, address string) Sender {
	return Sender{Name: name, Address: address}
}

// NormalizedEmail returns the lower-cased address used as the
// deduplication key. ok is false when no address can be resolved.
func (s Sender) NormalizedEmail() (string, bool) {
	addr := strings.TrimSpace(s.Address)
	if addr == "" {
		raw := strings.TrimSpace(s.Raw)
		if m := bracketPattern.FindStringSubmatch(raw); m != nil {
			addr = strings.TrimSpace(m[1])
		} else {
			addr = raw
		}
	}
	if addr == "" || !strings.Contains(addr, "@") {
		return "", false
	}
	return strings.ToLower(addr), true
}

// SplitName derives first and last name from the display name.
// The first whitespace token becomes the first name and the remainder
// the last name; without a display name the first name falls back to
// the local part of the email address.
func (s Sender) SplitName() (first, last string) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		if email, ok := s.NormalizedEmail(); ok {
			return strings.SplitN(email, "@", 2)[0], ""
		}
		return "", ""
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// FullName returns the display name, falling back to first/last parts
func (s Sender) FullName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	first, last := s.SplitName()
	return strings.TrimSpace(first + " " + last)
}
