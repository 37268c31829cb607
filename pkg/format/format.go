// Package format holds the human-facing formatting helpers shared by the bot
// surface: message templating, byte sizes and durations.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UserFields carries the substitution values for message templates.
type UserFields struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// Mention renders an HTML mention link for the user.
func (u UserFields) Mention() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, name)
}

// Message expands the {first}, {last}, {id}, {mention} and {username}
// placeholders of a template.
func Message(template string, u UserFields) string {
	if template == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{first}", u.FirstName,
		"{last}", u.LastName,
		"{id}", strconv.FormatInt(u.ID, 10),
		"{mention}", u.Mention(),
		"{username}", u.Username,
	)
	return r.Replace(template)
}

// Caption expands the {filename} and {previouscaption} placeholders of the
// custom caption template. An empty template passes the original caption
// through unchanged.
func Caption(template, filename, previous string) string {
	if template == "" {
		return previous
	}
	r := strings.NewReplacer(
		"{filename}", filename,
		"{previouscaption}", previous,
	)
	return r.Replace(template)
}

// Size renders a byte count in human-readable form.
func Size(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(units)-1 {
		value /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", value, units[i])
}

// Duration renders a duration as compact "1d 2h 3m 4s" text, dropping leading
// zero units.
func Duration(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, secs)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
