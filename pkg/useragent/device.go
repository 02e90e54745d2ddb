package useragent

import "strings"

type marker struct {
	token string
	name  string
}

// Order matters: Edge and Chrome UAs also carry "Safari/", Edge carries "Chrome/".
var browsers = []marker{
	{"Edg/", "Edge"},
	{"Firefox/", "Firefox"},
	{"Chrome/", "Chrome"},
	{"Safari/", "Safari"},
}

var systems = []marker{
	{"Windows NT 10.0", "Windows 10/11"},
	{"Windows", "Windows"},
	{"Android", "Android"},
	{"iPhone", "iOS"},
	{"iPad", "iOS"},
	{"Mac OS X", "macOS"},
	{"Linux", "Linux"},
}

// Describe condenses a User-Agent header into "Browser major on OS" for logs.
func Describe(ua string) string {
	if ua == "" {
		return "Unknown Device"
	}

	browser, version := "Unknown Browser", ""
	for _, m := range browsers {
		if idx := strings.Index(ua, m.token); idx != -1 {
			browser = m.name
			version = majorVersion(ua[idx+len(m.token):])
			break
		}
	}

	system := "Unknown OS"
	for _, m := range systems {
		if strings.Contains(ua, m.token) {
			system = m.name
			break
		}
	}

	if version != "" {
		return browser + " " + version + " on " + system
	}
	return browser + " on " + system
}

func majorVersion(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
