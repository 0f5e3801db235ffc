package form

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Classify maps a generation failure to an actionable operator message.
// Signature matching mirrors the failure modes seen in production:
// filesystem permissions on the output directory, template/layout
// problems inside the renderer, and everything else.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, os.ErrPermission):
		return "PDF generation failed: the output directory is not writable. Check filesystem permissions."
	case errors.Is(err, fs.ErrNotExist):
		return "PDF generation failed: a required template resource is missing."
	case strings.Contains(err.Error(), "unknown form type"):
		return "PDF generation failed: the requested form type is not supported."
	case strings.Contains(strings.ToLower(err.Error()), "font"):
		return "PDF generation failed: the rendering engine could not load its fonts."
	}
	return "PDF generation failed due to an unexpected error. The details have been logged."
}
