package mailer

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Image keys used by the templates
const (
	ImageLogo         = "logo"
	ImageDowntimeBody = "downtime_body"
	ImageUptimeBody   = "uptime_body"
	ImageCreditsBody  = "credits_body"
)

type imageSpec struct {
	key         string
	filenames   []string
	cid         string
	contentType string
}

var imageSpecs = []imageSpec{
	{key: ImageLogo, filenames: []string{"email-logo.png", "Email.png"}, cid: "email-logo", contentType: "image/png"},
	{key: ImageDowntimeBody, filenames: []string{"downtime-body.png"}, cid: "downtime-body", contentType: "image/png"},
	{key: ImageUptimeBody, filenames: []string{"uptime-body.png"}, cid: "uptime-body", contentType: "image/png"},
	{key: ImageCreditsBody, filenames: []string{"1Kcredits.png"}, cid: "credits-body", contentType: "image/png"},
}

// InlineImage is an image part referenced from HTML by its content id
type InlineImage struct {
	Filename    string
	CID         string
	ContentType string
	Data        []byte
}

// ImageSource resolves an image key to the value of an img src attribute.
// An empty result means the image is unavailable and the tag is left out.
type ImageSource interface {
	ImageSrc(key string) string
}

// CIDSource references images as inline MIME parts
type CIDSource struct{}

// ImageSrc returns the cid: reference for key
func (CIDSource) ImageSrc(key string) string {
	for _, spec := range imageSpecs {
		if spec.key == key {
			return "cid:" + spec.cid
		}
	}
	return ""
}

// Images holds the template images loaded from disk
type Images struct {
	byKey map[string]InlineImage
}

// LoadImages reads the known template images from dir. Missing files are
// logged and skipped so mail still goes out without them.
func LoadImages(dir string) *Images {
	images := &Images{byKey: map[string]InlineImage{}}
	for _, spec := range imageSpecs {
		for _, name := range spec.filenames {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			images.byKey[spec.key] = InlineImage{
				Filename:    name,
				CID:         spec.cid,
				ContentType: spec.contentType,
				Data:        data,
			}
			break
		}
		if _, ok := images.byKey[spec.key]; !ok {
			zap.S().Warnw("email image not found", "key", spec.key, "dir", dir, "candidates", spec.filenames)
		}
	}
	return images
}

// Get returns the image stored under key
func (i *Images) Get(key string) (InlineImage, bool) {
	img, ok := i.byKey[key]
	return img, ok
}

// DataURI returns key's image as a base64 data URI, or "" when it is missing
func (i *Images) DataURI(key string) string {
	img, ok := i.byKey[key]
	if !ok {
		return ""
	}
	return "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ImageSrc implements ImageSource with data URIs, for previews
func (i *Images) ImageSrc(key string) string {
	return i.DataURI(key)
}

// Inline returns the loaded images for keys, skipping any that are missing
func (i *Images) Inline(keys ...string) []InlineImage {
	var out []InlineImage
	for _, key := range keys {
		if img, ok := i.byKey[key]; ok {
			out = append(out, img)
		}
	}
	return out
}

// ReferencedBy returns the loaded images whose cid: reference appears in html
func (i *Images) ReferencedBy(html string) []InlineImage {
	var keys []string
	for _, spec := range imageSpecs {
		if strings.Contains(html, "cid:"+spec.cid) {
			keys = append(keys, spec.key)
		}
	}
	return i.Inline(keys...)
}
