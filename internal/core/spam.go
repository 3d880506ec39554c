package core

import "strings"

// ClassifySpam reports whether a submission is spam under a form's honeypot
// policy: spam if and only if the honeypot field carries a non-blank value.
// Humans never see the hidden field; naive bots fill every field they find.
// The decision is made once at ingestion time and never revised.
func ClassifySpam(honeypotField string, fields map[string]string) bool {
	if honeypotField == "" {
		honeypotField = DefaultHoneypotField
	}
	value, ok := fields[honeypotField]
	if !ok {
		return false
	}
	return strings.TrimSpace(value) != ""
}
