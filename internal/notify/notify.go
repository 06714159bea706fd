package notify

import (
	"os/exec"
	"runtime"
	"strings"
)

// AppName labels notifications
const AppName = "libgenfic"

// Kind selects the notification icon where the platform supports one
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier sends desktop notifications when enabled
type Notifier struct {
	Enabled bool
	// run executes the platform command; replaced in tests
	run func(name string, args ...string) error
}

// New returns a notifier that is a no-op unless enabled
func New(enabled bool) *Notifier {
	return &Notifier{Enabled: enabled, run: runCommand}
}

// DownloadComplete announces a finished file
func (n *Notifier) DownloadComplete(title, path string) {
	n.Send("Download Complete", title+"\n"+path, KindSuccess)
}

// DownloadFailed announces a failed download
func (n *Notifier) DownloadFailed(title, reason string) {
	msg := title
	if reason != "" {
		msg += ": " + reason
	}
	n.Send("Download Failed", msg, KindError)
}

// Send delivers the notification synchronously; failures are ignored
func (n *Notifier) Send(title, message string, kind Kind) {
	if n == nil || !n.Enabled {
		return
	}
	name, args := command(runtime.GOOS, title, message, kind)
	if name == "" {
		return
	}
	n.run(name, args...)
}

func command(goos, title, message string, kind Kind) (string, []string) {
	switch goos {
	case "linux", "freebsd", "openbsd":
		icon := "dialog-information"
		switch kind {
		case KindSuccess:
			icon = "dialog-ok"
		case KindError:
			icon = "dialog-error"
		}
		return "notify-send", []string{"-i", icon, "-a", AppName, title, message}
	case "darwin":
		script := `display notification "` + escapeAppleScript(message) + `" with title "` + escapeAppleScript(title) + `"`
		return "osascript", []string{"-e", script}
	case "windows":
		script := `
	[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
	[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
	$template = '<toast><visual><binding template="ToastText02"><text id="1">` + escapeXML(title) + `</text><text id="2">` + escapeXML(message) + `</text></binding></visual></toast>'
	$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
	$xml.LoadXml($template)
	$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
	[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("` + AppName + `").Show($toast)
	`
		return "powershell", []string{"-Command", script}
	}
	return "", nil
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeAppleScript(s string) string {
	return appleScriptEscaper.Replace(s)
}

// Single quotes are doubled as well since the template sits in a PowerShell literal
var xmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;", `"`, "&quot;", "'", "''")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
