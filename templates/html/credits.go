package templates

import (
	"fmt"
	"html"

	"github.com/heliumhq/invite-dashboard-api/mailer"
)

// GetStartedURL is where the credits email sends the reader
const GetStartedURL = "http://he2.ai"

// RenderCredits builds the credits added email. amount is the human readable
// credit amount shown under the body image; it is left out when empty.
func RenderCredits(images mailer.ImageSource, amount string) string {
	amountRow := ""
	if amount != "" {
		amountRow = fmt.Sprintf(`<tr>
<td align="center" style="padding:0 20px 24px 20px;color:#333333;font-size:18px;line-height:1.6">%s in credits are ready to use.</td>
</tr>`, html.EscapeString(amount))
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html>
<head>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
</head>
<body style="width:100%%;background-color:#ffffff;margin:0;padding:0">
<table width="100%%" border="0" cellpadding="0" cellspacing="0" bgcolor="#ffffff">
<tr>
<td style="background-color:#ffffff;padding:20px 0">
<table align="center" width="100%%" border="0" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;background-color:#ffffff;color:#000;font-family:Arial, Helvetica, sans-serif">
<tr>
<td align="center" style="padding:0px 20px">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%%;max-width:56px"><tr><td>%s</td></tr></table>
</td>
</tr>
<tr><td style="font-size:0;height:24px" height="24">&nbsp;</td></tr>
<tr>
<td align="center" style="padding:0">
<table cellpadding="0" cellspacing="0" border="0" style="width:100%%;max-width:600px"><tr><td>%s</td></tr></table>
</td>
</tr>
<tr><td style="font-size:0;height:24px" height="24">&nbsp;</td></tr>
%s
<tr>
<td align="center" style="padding:0">
<a href="%s" target="_blank" rel="noopener noreferrer" style="display:inline-block;background-color:#4ade80;color:#ffffff;font-family:Arial, Helvetica, sans-serif;font-size:16px;font-weight:600;text-decoration:none;text-align:center;padding:14px 32px;border-radius:8px;line-height:1.2;letter-spacing:0.01em">Get Started</a>
</td>
</tr>
</table>
</td>
</tr>
</table>
</body>
</html>`,
		imgTag(images, mailer.ImageLogo, 56, "57", "", "Helium Logo"),
		imgTag(images, mailer.ImageCreditsBody, 600, "auto", ";border-radius:8px", "Credits Added"),
		amountRow,
		GetStartedURL,
	)
}
