package md

import (
	"regexp"
	"strings"
)

var (
	imgTag  = regexp.MustCompile(`<img(.*?)/>`)
	srcAttr = regexp.MustCompile(`src="(.*?)"`)
	altAttr = regexp.MustCompile(`alt="(.*?)"`)
)

// ImageUploader stores the image referenced by src and returns the URL the
// page should use instead. An empty URL leaves the tag unchanged.
type ImageUploader func(src, alt string) (string, error)

// RewriteImages hands every local image to upload and points its src at the
// returned URL. Remote images are skipped.
func RewriteImages(html string, upload ImageUploader) (string, error) {
	return outsideCDATA(html, func(s string) (string, error) {
		var uploadErr error
		out := imgTag.ReplaceAllStringFunc(s, func(tag string) string {
			if uploadErr != nil {
				return tag
			}

			loc := srcAttr.FindStringSubmatchIndex(tag)
			if loc == nil {
				return tag
			}
			src := tag[loc[2]:loc[3]]
			if isRemote(src) {
				return tag
			}

			var alt string
			if m := altAttr.FindStringSubmatch(tag); m != nil {
				alt = m[1]
			}

			newSrc, err := upload(src, alt)
			if err != nil {
				uploadErr = err
				return tag
			}
			if newSrc == "" {
				return tag
			}
			return tag[:loc[2]] + newSrc + tag[loc[3]:]
		})
		return out, uploadErr
	})
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "data:")
}
