// Package media stores uploaded audio and artwork and hands back durable URLs.
package media

import (
	"bytes"
	"context"
	"io"
	"strings"

	"voicebox/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind is the type of media being ingested
type Kind int

const (
	Audio Kind = iota
	Image
)

// folder is the object prefix of each kind
func (k Kind) folder() string {
	if k == Audio {
		return "voicebox_audios"
	}
	return "voicebox_thumbnails"
}

// family is the MIME top-level type accepted for each kind
func (k Kind) family() string {
	if k == Audio {
		return "audio/"
	}
	return "image/"
}

func (k Kind) String() string {
	if k == Audio {
		return "audio"
	}
	return "thumbnail"
}

// Store is a blob store that returns a public URL for every object it accepts
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Upload is one file received from a client
type Upload struct {
	Filename    string
	ContentType string // As declared by the client, may be empty
	Size        int64
	Body        io.Reader
}

// Object is a stored upload
type Object struct {
	Key string
	URL string
}

// Ingestor validates uploads and writes them to a Store
type Ingestor struct {
	store Store
}

// NewIngestor creates an Ingestor backed by store
func NewIngestor(store Store) *Ingestor {
	return &Ingestor{store: store}
}

// sniffLen is how much of a body is read to detect its type
const sniffLen = 3072

// Ingest stores one upload. A body whose type does not belong to kind fails validation;
// store failures are reported as UploadFailed.
func (in *Ingestor) Ingest(ctx context.Context, up Upload, kind Kind) (*Object, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, domain.UploadFailedError(err)
	}
	head = head[:n]

	// The bytes decide the type; the client's filename and declared type are never trusted
	detected := mimetype.Detect(head)
	contentType := baseType(detected.String())
	if !strings.HasPrefix(contentType, kind.family()) {
		return nil, domain.ValidationError("Invalid " + kind.String() + " file")
	}
	// A declared alias of the detected type (audio/mp3 for audio/mpeg) is kept as sent
	if declared := baseType(up.ContentType); strings.HasPrefix(declared, kind.family()) && detected.Is(declared) {
		contentType = declared
	}

	key := kind.folder() + "/" + uuid.NewString() + detected.Extension()
	body := io.MultiReader(bytes.NewReader(head), up.Body)

	url, err := in.store.Put(ctx, key, body, up.Size, contentType)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"key":      key,
			"kind":     kind.String(),
			"filename": up.Filename,
			"error": err.Error(),
		}).Error("Media upload failed")
		return nil, domain.UploadFailedError(err)
	}
	return &Object{Key: key, URL: url}, nil
}

// baseType lower-cases a media type and drops its parameters
func baseType(v string) string {
	if i := strings.Index(v, ";"); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// Discard removes an object whose episode was never persisted. Failures are only logged.
func (in *Ingestor) Discard(ctx context.Context, obj *Object) {
	if obj == nil {
		return
	}
	if err := in.store.Remove(ctx, obj.Key); err != nil {
		logrus.WithFields(logrus.Fields{"key": obj.Key, "error": err.Error()}).Warn("Orphaned media not removed")
	}
}
