package mailer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender delivers a composed message
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Message is one email to one recipient
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Inline  []InlineImage
}

// Bytes renders the message as RFC 5322 text: a multipart/alternative body of
// text and HTML, wrapped in multipart/related when there are inline images
func (m *Message) Bytes(from mail.Address, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	alt, altBody, err := m.alternative()
	if err != nil {
		return nil, err
	}

	domain := "localhost"
	if at := strings.LastIndex(from.Address, "@"); at != -1 {
		domain = from.Address[at+1:]
	}

	header := textproto.MIMEHeader{}
	header.Set("From", from.String())
	header.Set("To", m.To)
	header.Set("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header.Set("Date", now.Format(time.RFC1123Z))
	header.Set("Message-ID", fmt.Sprintf("<%s@%s>", uuid.New().String(), domain))
	header.Set("MIME-Version", "1.0")

	if len(m.Inline) == 0 {
		header.Set("Content-Type", "multipart/alternative; boundary="+alt.Boundary())
		writeHeader(&buf, header)
		buf.Write(altBody)
		return buf.Bytes(), nil
	}

	var relBody bytes.Buffer
	rel := multipart.NewWriter(&relBody)
	altPart, err := rel.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"multipart/alternative; boundary=" + alt.Boundary()},
	})
	if err != nil {
		return nil, err
	}
	if _, err = altPart.Write(altBody); err != nil {
		return nil, err
	}
	for _, img := range m.Inline {
		part, err := rel.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {img.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-ID":                {"<" + img.CID + ">"},
			"Content-Disposition":       {mime.FormatMediaType("inline", map[string]string{"filename": img.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err = writeBase64(part, img.Data); err != nil {
			return nil, err
		}
	}
	if err = rel.Close(); err != nil {
		return nil, err
	}

	header.Set("Content-Type", fmt.Sprintf(`multipart/related; boundary=%s; type="multipart/alternative"`, rel.Boundary()))
	writeHeader(&buf, header)
	buf.Write(relBody.Bytes())
	return buf.Bytes(), nil
}

func (m *Message) alternative() (*multipart.Writer, []byte, error) {
	var body bytes.Buffer
	alt := multipart.NewWriter(&body)
	if m.Text != "" {
		if err := writeQuotedPrintable(alt, "text/plain; charset=utf-8", m.Text); err != nil {
			return nil, nil, err
		}
	}
	if err := writeQuotedPrintable(alt, "text/html; charset=utf-8", m.HTML); err != nil {
		return nil, nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, nil, err
	}
	return alt, body.Bytes(), nil
}

func writeQuotedPrintable(w *multipart.Writer, contentType, content string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err = qp.Write([]byte(content)); err != nil {
		return err
	}
	return qp.Close()
}

// writeBase64 wraps encoded lines at 76 characters
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	bw := bufio.NewWriter(w)
	for len(encoded) > 76 {
		if _, err := bw.WriteString(encoded[:76] + "\r\n"); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	if _, err := bw.WriteString(encoded + "\r\n"); err != nil {
		return err
	}
	return bw.Flush()
}

func writeHeader(buf *bytes.Buffer, header textproto.MIMEHeader) {
	for _, key := range []string{"From", "To", "Subject", "Date", "Message-ID", "MIME-Version", "Content-Type"} {
		fmt.Fprintf(buf, "%s: %s\r\n", key, header.Get(key))
	}
	buf.WriteString("\r\n")
}
