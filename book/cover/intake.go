package cover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/marcelsud/book-manager/book"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AllowedExtensions is the fixed allow-list of cover image extensions
var AllowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

const meterName = "github.com/marcelsud/book-manager/book/cover"

var (
	outcomeAccepted = metric.WithAttributes(attribute.String("outcome", "accepted"))
	outcomeRejected = metric.WithAttributes(attribute.String("outcome", "rejected"))
)

/* Intake implements book.ImageStore on top of a directory.
 * The extension is the only thing checked: no size limit, no content sniffing.
 */
type Intake struct {
	fs      afero.Fs
	dir     string
	naming  Naming
	uploads metric.Int64Counter
}

// NewIntake creates the upload directory when missing
func NewIntake(fs afero.Fs, dir string, naming Naming) (*Intake, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	uploads, err := otel.Meter(meterName).Int64Counter(
		"book.cover.uploads",
		metric.WithDescription("Cover uploads received, by intake outcome"),
		metric.WithUnit("{files}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating uploads counter: %w", err)
	}
	return &Intake{
		fs:      fs,
		dir:     dir,
		naming:  naming,
		uploads: uploads,
	}, nil
}

// Allowed reports whether filename carries one of the allowed extensions.
// The comparison ignores case.
func Allowed(filename string) bool {
	return AllowedExtensions[Extension(filename)]
}

// Save writes an accepted upload and returns its stored name.
// A rejected upload returns "" and no error.
func (i *Intake) Save(ctx context.Context, u book.Upload) (string, error) {
	name := Sanitize(u.Filename)
	if u.Content == nil || !Allowed(u.Filename) || !Allowed(name) {
		i.uploads.Add(ctx, 1, outcomeRejected)
		log := httplog.LogEntry(ctx)
		log.Debug().Str("filename", u.Filename).Msg("cover upload rejected")
		return "", nil
	}
	if i.naming == Unique {
		name = uuid.NewString() + "_" + name
	}

	dst, err := i.fs.OpenFile(filepath.Join(i.dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if _, err := io.Copy(dst, u.Content); err != nil {
		dst.Close()
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing file: %w", err)
	}
	i.uploads.Add(ctx, 1, outcomeAccepted)
	return name, nil
}

// FileSystem exposes the upload directory read-only for static serving
func (i *Intake) FileSystem() http.FileSystem {
	return afero.NewHttpFs(afero.NewReadOnlyFs(i.fs)).Dir(i.dir)
}
