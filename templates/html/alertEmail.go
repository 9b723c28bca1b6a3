package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderAlertEmail generates branded HTML for a case alert. The subject is displayed in the
// header banner, details become a list and body is plain text that gets HTML-escaped and has
// newlines converted to <br> tags. An empty link omits the dashboard button.
func RenderAlertEmail(subject string, details []string, body, link string) string {
	safeSubject := html.EscapeString(subject)

	var items strings.Builder
	for _, d := range details {
		items.WriteString("<li>" + html.EscapeString(d) + "</li>")
	}
	htmlBody := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")

	button := ""
	if link != "" {
		button = fmt.Sprintf(`<p><a class="button" href="%s">Open in dashboard</a></p>`, html.EscapeString(link))
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f1ea; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #b8860b 0%%, #8b4513 100%%); padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .content ul { padding-left: 18px; }
    .button { display: inline-block; padding: 10px 18px; background: #8b4513; color: #fff; text-decoration: none; border-radius: 4px; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <ul>%s</ul>
      <p>%s</p>
      %s
    </div>
    <div class="footer">
      <p>GoldGuard galamsey reporting | automated alert, do not reply</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, items.String(), htmlBody, button)
}
