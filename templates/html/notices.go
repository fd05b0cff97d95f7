package templates

import (
	"fmt"
	"html"
	"strings"

	"github.com/heliumhq/invite-dashboard-api/mailer"
)

// DefaultDowntimeParagraphs fill the downtime notice when the text has no body
var DefaultDowntimeParagraphs = []string{
	"We wanted to let you know that Helium will be temporarily unavailable for 1 hour as we perform scheduled maintenance and upgrades.",
	"During this window, you won't be able to access Helium. Once the maintenance is complete, you'll be able to log back in and experience the platform as usual.",
	"We appreciate your patience and understanding as we work to make Helium even better for you.",
}

// DefaultUptimeParagraphs fill the uptime notice when the text has no body
var DefaultUptimeParagraphs = []string{
	"We're pleased to inform you that Helium is now back online and fully operational after scheduled maintenance.",
	"All systems are running smoothly, and you can now access all features and services as usual. We appreciate your patience during the brief maintenance window.",
	"If you experience any issues, please don't hesitate to reach out to our support team.",
}

// RenderDowntime builds the scheduled downtime notice from free-form text
func RenderDowntime(images mailer.ImageSource, text string) string {
	return renderNotice(images, mailer.ImageDowntimeBody, "Downtime Notice", text, DefaultDowntimeParagraphs)
}

// RenderUptime builds the back-online notice from free-form text
func RenderUptime(images mailer.ImageSource, text string) string {
	return renderNotice(images, mailer.ImageUptimeBody, "System Back Online", text, DefaultUptimeParagraphs)
}

func renderNotice(images mailer.ImageSource, bodyKey, bodyAlt, text string, defaults []string) string {
	parsed := mailer.ParseEmailText(text)
	paragraphs := parsed.Paragraphs
	if len(paragraphs) == 0 {
		paragraphs = defaults
	}

	var main, secondary, closing string
	main = escapeKeepBreaks(paragraphs[0])
	if len(paragraphs) > 1 {
		secondary = escapeKeepBreaks(paragraphs[1])
	}
	if len(paragraphs) > 2 {
		rest := make([]string, 0, len(paragraphs)-2)
		for _, p := range paragraphs[2:] {
			rest = append(rest, escapeKeepBreaks(p))
		}
		closing = strings.Join(rest, "<br>")
	}

	greeting := strings.Replace(escapeKeepBreaks(parsed.Greeting),
		"Greetings from Helium,", `Greetings from <span style="font-weight:700">Helium</span>,`, 1)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
</head>
<body style="width:100%%;background-color:#f0f1f5;margin:0;padding:0">
<table width="100%%" border="0" cellpadding="0" cellspacing="0" bgcolor="#f0f1f5">
<tr>
<td style="background-color:#f0f1f5">
<table align="center" width="100%%" border="0" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff;color:#000;font-family:Arial, Helvetica, sans-serif">
<tr>
<td align="center" style="padding:20px 20px 0 20px">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%%;max-width:56px"><tr><td>%s</td></tr></table>
</td>
</tr>
<tr><td style="font-size:0;height:16px" height="16">&nbsp;</td></tr>
<tr>
<td align="center" style="padding:0px 20px">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%%;max-width:560px"><tr><td>%s</td></tr></table>
</td>
</tr>
%s
%s
%s
%s
%s
</table>
</td>
</tr>
</table>
</body>
</html>`,
		imgTag(images, mailer.ImageLogo, 56, "57", "", "Helium Logo"),
		imgTag(images, bodyKey, 560, "420", "", bodyAlt),
		textRow(greeting),
		textRow(main),
		textRow(secondary),
		textRow(closing),
		textRow(parsed.Signoff),
	)
}

func textRow(content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf(`<tr><td style="font-size:0;height:8px" height="8">&nbsp;</td></tr>
<tr>
<td dir="ltr" style="color:#333333;font-size:18.6667px;white-space:pre-wrap;line-height:1.84;text-align:left;padding:0px 20px">%s<br></td>
</tr>`, content)
}

// imgTag renders an img element, or nothing when the source has no such image
func imgTag(images mailer.ImageSource, key string, width int, height, extraStyle, alt string) string {
	src := images.ImageSrc(key)
	if src == "" {
		return ""
	}
	return fmt.Sprintf(`<img src="%s" width="%d" height="%s" style="display:block;width:100%%;height:auto;max-width:100%%%s" alt="%s">`,
		src, width, height, extraStyle, html.EscapeString(alt))
}

// escapeKeepBreaks escapes text for HTML but keeps the <br> separators the
// parser inserts
func escapeKeepBreaks(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "&lt;br&gt;", "<br>")
}
