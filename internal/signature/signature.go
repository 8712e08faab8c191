// Package signature derives the closing signature block appended to
// outbound messages from the attendant/department configuration.
package signature

import "strings"

// Resolve returns the signature text for a message. An explicit override
// wins when non-empty; otherwise attendant and department compose as
// "{attendant} - {department}"; otherwise whichever single field is set;
// otherwise the empty string. Whitespace-only values count as empty.
func Resolve(attendant, department, override string) string {
	if s := strings.TrimSpace(override); s != "" {
		return s
	}

	a := strings.TrimSpace(attendant)
	d := strings.TrimSpace(department)

	switch {
	case a != "" && d != "":
		return a + " - " + d
	case a != "":
		return a
	default:
		return d
	}
}

// Append attaches sig to message separated by a blank line. The message is
// returned unchanged when sig is empty or already present, so re-resolving
// an already signed draft does not double the signature.
func Append(message, sig string) string {
	if sig == "" || strings.Contains(message, sig) {
		return message
	}
	return message + "\n\n" + sig
}
