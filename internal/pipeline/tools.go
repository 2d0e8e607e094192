package pipeline

import (
	"context"

	"github.com/backmassage/jxlmaster/internal/exif"
	"github.com/backmassage/jxlmaster/internal/jxl"
	"github.com/backmassage/jxlmaster/internal/magick"
)

// Tools abstracts the three external binaries the pipeline drives. The
// default implementation shells out to magick, exiftool, and cjxl; tests
// substitute a fake to exercise the state machine without any of them
// installed.
type Tools interface {
	// Inspect reports whether path fails a strict decode check.
	Inspect(ctx context.Context, path string) (corrupt bool, err error)
	// Identify returns the lowercased true-format tag of path.
	Identify(ctx context.Context, path string) (string, error)
	// Recover re-encodes a corrupt image to a sibling path; attempted once.
	Recover(ctx context.Context, path string) (string, error)
	// Normalize re-encodes to a sibling ".PNG" output for unsupported formats.
	Normalize(ctx context.Context, path string) (string, error)
	// Encode converts path to JPEG XL; output existence is the success signal.
	Encode(ctx context.Context, path string) (jxl.Result, error)
	// CopyMetadata transfers all tags from src to dst.
	CopyMetadata(ctx context.Context, src, dst string) error
	// SetTitle stamps path's base name into its Title tag.
	SetTitle(ctx context.Context, path string) error
}

// execTools is the production toolset backed by the real binaries.
type execTools struct{}

// DefaultTools returns the exec-backed toolset.
func DefaultTools() Tools { return execTools{} }

func (execTools) Inspect(ctx context.Context, path string) (bool, error) {
	return magick.Inspect(ctx, path)
}

func (execTools) Identify(ctx context.Context, path string) (string, error) {
	return magick.Identify(ctx, path)
}

func (execTools) Recover(ctx context.Context, path string) (string, error) {
	return magick.Recover(ctx, path)
}

func (execTools) Normalize(ctx context.Context, path string) (string, error) {
	return magick.Normalize(ctx, path)
}

func (execTools) Encode(ctx context.Context, path string) (jxl.Result, error) {
	return jxl.Encode(ctx, path)
}

func (execTools) CopyMetadata(ctx context.Context, src, dst string) error {
	return exif.CopyAll(ctx, src, dst)
}

func (execTools) SetTitle(ctx context.Context, path string) error {
	return exif.SetTitle(ctx, path)
}
