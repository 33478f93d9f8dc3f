// Package blobimage downloads the images referenced by markdown and HTML
// documents, stores them through a blobstore.Store and attaches an
// image/<format> node of kind "blob" below each image reference.
//
// The hook is registered on */* so that it runs after global hooks
// registered before it by earlier plugins, such as the id plugin: an image
// node that already carries an id names its stored file after it.
package blobimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"net/http"
	"net/url"
	"path"
	"strings"

	umt "github.com/alnah/go-umt"
	"github.com/alnah/go-umt/blobstore"
	"github.com/alnah/go-umt/fetch"
	"github.com/alnah/go-umt/plugin/html"
	"github.com/alnah/go-umt/plugin/id"
	"github.com/alnah/go-umt/plugin/markdown"
)

// KindBlob is the kind of attached image nodes.
const KindBlob = "blob"

// MimeType is the fallback tag of attached nodes; the sniffed type, such
// as image/png, is used when known.
const MimeType umt.MimeType = "image/*"

// Image is the payload of blob nodes. Width and Height are zero for
// formats whose dimensions cannot be decoded.
type Image struct {
	Src      string
	Filename string
	Path     string
	Width    int
	Height   int
	Title    string
	Alt      string
}

// extensions maps sniffable image types to file extensions.
var extensions = map[string]string{
	"image/png":                "png",
	"image/jpeg":               "jpg",
	"image/gif":                "gif",
	"image/webp":               "webp",
	"image/bmp":                "bmp",
	"image/x-icon":             "ico",
	"image/vnd.microsoft.icon": "ico",
}

type options struct {
	fetcher fetch.Fetcher
}

// Option configures the image plugin.
type Option func(*options)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f fetch.Fetcher) Option {
	return func(o *options) {
		if f != nil {
			o.fetcher = f
		}
	}
}

// Plugin registers the image hook. Images are persisted with store.
func Plugin(store blobstore.Store, opts ...Option) umt.Plugin {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fetcher == nil {
		o.fetcher = fetch.NewHTTPFetcher(fetch.DefaultConfig())
	}

	return func(e *umt.Engine) umt.Definition {
		x := &extractor{engine: e, store: store, fetcher: o.fetcher}
		return umt.Definition{
			OnCreate: []umt.CreateHook{{
				MimeType: umt.AnyMimeType,
				Match:    isImage,
				Event:    x.event,
			}},
		}
	}
}

func isImage(n *umt.Node) bool {
	if n.MimeType == markdown.MimeType && n.Type == markdown.KindImage {
		return true
	}
	return n.MimeType == html.MimeType && html.IsElement(n, "img")
}

// reference is what an image node points at.
type reference struct {
	src, alt, title string
}

func referenceOf(n *umt.Node) reference {
	if img, ok := n.Data.(markdown.Image); ok {
		return reference{src: img.URL, alt: img.Alt, title: img.Title}
	}
	src, _ := html.Attr(n, "src")
	alt, _ := html.Attr(n, "alt")
	title, _ := html.Attr(n, "title")
	return reference{src: src, alt: alt, title: title}
}

type extractor struct {
	engine  *umt.Engine
	store   blobstore.Store
	fetcher fetch.Fetcher
}

func (x *extractor) event(ctx context.Context, n *umt.Node, _ any) (*umt.Node, error) {
	ref := referenceOf(n)
	if ref.src == "" {
		return n, nil
	}

	u, err := url.Parse(ref.src)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		x.engine.Logger().Debug("skipping image without absolute URL", "src", ref.src)
		return n, nil
	}

	resp, err := x.fetcher.Fetch(ctx, ref.src)
	if err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", ref.src, err)
	}

	mimeType := sniff(resp.Body)
	ext, ok := extensions[mimeType]
	if !ok {
		x.engine.Logger().Debug("not an image", "src", ref.src, "mimeType", mimeType)
		return n, nil
	}

	filename := generateFilename(u, ext)
	if nodeID, ok := id.Of(n); ok {
		filename = nodeID + "." + ext
	}

	location, err := x.store.Store(ctx, filename, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storing image %s: %w", ref.src, err)
	}

	img := Image{
		Src:      ref.src,
		Filename: filename,
		Path:     location,
		Title:    ref.title,
		Alt:      ref.alt,
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(resp.Body)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}

	blob, err := x.engine.N(ctx, &umt.Node{
		MimeType: umt.MimeType(mimeType),
		Type:     KindBlob,
		Data:     img,
	}, MimeType)
	if err != nil {
		return nil, err
	}
	return umt.AddChildren(n, blob), nil
}

// sniff returns the media type of data without parameters.
func sniff(data []byte) string {
	mt, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return strings.TrimSpace(mt)
}

// generateFilename names a download after the last path segment of u,
// swapping its extension for ext when they disagree.
func generateFilename(u *url.URL, ext string) string {
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "image"
	}
	name = strings.NewReplacer("\\", "_", "\x00", "").Replace(name)

	if strings.HasSuffix(strings.ToLower(name), "."+ext) {
		return name
	}
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	return name + "." + ext
}

// Of returns the payload of a blob node.
func Of(n *umt.Node) (Image, bool) {
	if n.Type != KindBlob {
		return Image{}, false
	}
	img, ok := n.Data.(Image)
	return img, ok
}

// Blobs returns the blob nodes attached anywhere below n.
func Blobs(n *umt.Node) []*umt.Node {
	var out []*umt.Node
	umt.Walk(n, func(c *umt.Node) bool {
		if _, ok := Of(c); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}
