package uploads

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util"
)

func newIngestor(t *testing.T) *DiskIngestor {
	t.Helper()
	ingestor, err := NewDiskIngestor(config.UploadConfig{
		Dir:          t.TempDir(),
		MaxFileBytes: 1024,
		MaxFiles:     5,
	}, zap.NewNop())
	require.NoError(t, err)
	return ingestor
}

// buildHeaders assembles multipart file headers the way fiber hands
// them to the handler.
func buildHeaders(t *testing.T, files map[string]struct {
	contentType string
	body        []byte
}) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename="%s"`, name))
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.body)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func TestDiskIngestor_StoresImages(t *testing.T) {
	ingestor := newIngestor(t)

	headers := buildHeaders(t, map[string]struct {
		contentType string
		body        []byte
	}{
		"front.jpg": {"image/jpeg", []byte("jpeg-bytes")},
		"back.png":  {"image/png", []byte("png-bytes")},
	})

	stored, err := ingestor.Ingest(headers)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, file := range stored {
		_, err := os.Stat(file.Path)
		require.NoError(t, err)
		require.NotEmpty(t, file.Original)
	}
}

func TestDiskIngestor_CapsFileCount(t *testing.T) {
	ingestor := newIngestor(t)

	files := map[string]struct {
		contentType string
		body        []byte
	}{}
	for i := 0; i < 7; i++ {
		files[fmt.Sprintf("photo-%d.jpg", i)] = struct {
			contentType string
			body        []byte
		}{"image/jpeg", []byte("jpeg-bytes")}
	}

	stored, err := ingestor.Ingest(buildHeaders(t, files))
	require.NoError(t, err)
	require.Len(t, stored, 5)
}

func TestDiskIngestor_RejectsNonImage(t *testing.T) {
	ingestor := newIngestor(t)

	headers := buildHeaders(t, map[string]struct {
		contentType string
		body        []byte
	}{
		"notes.txt": {"text/plain", []byte("hello")},
	})

	_, err := ingestor.Ingest(headers)
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestDiskIngestor_RejectsOversizeFile(t *testing.T) {
	ingestor := newIngestor(t)

	headers := buildHeaders(t, map[string]struct {
		contentType string
		body        []byte
	}{
		"huge.jpg": {"image/jpeg", bytes.Repeat([]byte("x"), 2048)},
	})

	_, err := ingestor.Ingest(headers)
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestDiskIngestor_RemoveIsIdempotent(t *testing.T) {
	ingestor := newIngestor(t)

	headers := buildHeaders(t, map[string]struct {
		contentType string
		body        []byte
	}{
		"front.jpg": {"image/jpeg", []byte("jpeg-bytes")},
	})

	stored, err := ingestor.Ingest(headers)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	require.NoError(t, ingestor.Remove(stored[0].Path))
	_, err = os.Stat(stored[0].Path)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, ingestor.Remove(stored[0].Path))
}
