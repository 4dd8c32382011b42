package upload

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/shalevclinic/backend/config"
	"github.com/shalevclinic/backend/services"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		Dir:         "uploads",
		MaxFileSize: 5 * 1024 * 1024,
		MaxFiles:    1,
		FieldName:   "image",
	}
}

func testStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, testUploadConfig(), zap.NewNop())
	require.NoError(t, err)
	return store, fs
}

// pngBytes renders a tiny real PNG so content sniffing sees image data
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds an upload request with one file part
func multipartRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestStoreAccept(t *testing.T) {
	t.Run("valid image is written under a generated name", func(t *testing.T) {
		store, fs := testStore(t)
		data := pngBytes(t)

		desc, err := store.Accept(multipartRequest(t, "image", "photo.png", "image/png", data))
		require.NoError(t, err)
		require.NotNil(t, desc)

		assert.Equal(t, "photo.png", desc.OriginalName)
		assert.Equal(t, "image/png", desc.MimeType)
		assert.Equal(t, int64(len(data)), desc.Size)
		assert.NotEqual(t, desc.OriginalName, desc.StoredName)

		stored, err := afero.ReadFile(fs, desc.Path)
		require.NoError(t, err)
		assert.Equal(t, data, stored)
	})

	t.Run("non-multipart request yields no descriptor", func(t *testing.T) {
		store, _ := testStore(t)

		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"title":"x"}`))
		req.Header.Set("Content-Type", "application/json")

		desc, err := store.Accept(req)
		require.NoError(t, err)
		assert.Nil(t, desc)
	})

	t.Run("wrong field name is rejected and nothing is written", func(t *testing.T) {
		store, fs := testStore(t)

		_, err := store.Accept(multipartRequest(t, "file", "photo.png", "image/png", pngBytes(t)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrUnexpectedField))
		assertNoStoredFiles(t, fs)
	})

	t.Run("disallowed declared type is rejected", func(t *testing.T) {
		store, fs := testStore(t)

		_, err := store.Accept(multipartRequest(t, "image", "notes.txt", "text/plain", []byte("hello")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrUnsupportedMimeType))
		assertNoStoredFiles(t, fs)
	})

	t.Run("rejection details do not leak into the shared error value", func(t *testing.T) {
		store, _ := testStore(t)

		_, err := store.Accept(multipartRequest(t, "image", "notes.txt", "text/plain", []byte("hello")))
		require.Error(t, err)

		assert.Equal(t, "text/plain", services.GetErrorDetails(err)["mimeType"])
		assert.Nil(t, services.ErrUnsupportedMimeType.Details)
	})

	t.Run("concurrent rejections carry independent details", func(t *testing.T) {
		store, _ := testStore(t)

		template := multipartRequest(t, "image", "notes.txt", "text/plain", []byte("hello"))
		body, err := io.ReadAll(template.Body)
		require.NoError(t, err)
		contentType := template.Header.Get("Content-Type")

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
				req.Header.Set("Content-Type", contentType)
				_, err := store.Accept(req)
				assert.True(t, errors.Is(err, services.ErrUnsupportedMimeType))
			}()
		}
		wg.Wait()

		assert.Nil(t, services.ErrUnsupportedMimeType.Details)
	})

	t.Run("image declared type with non-image bytes is rejected", func(t *testing.T) {
		store, fs := testStore(t)

		_, err := store.Accept(multipartRequest(t, "image", "fake.png", "image/png", []byte("#!/bin/sh\nrm -rf /\n")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrUnsupportedMimeType))
		assertNoStoredFiles(t, fs)
	})

	t.Run("oversized file is rejected", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		cfg := testUploadConfig()
		cfg.MaxFileSize = 64
		store, err := NewStore(fs, cfg, zap.NewNop())
		require.NoError(t, err)

		_, err = store.Accept(multipartRequest(t, "image", "big.png", "image/png", pngBytes(t)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrFileTooLarge))
		assertNoStoredFiles(t, fs)
	})

	t.Run("second file part is rejected", func(t *testing.T) {
		store, fs := testStore(t)
		data := pngBytes(t)

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		for _, name := range []string{"one.png", "two.png"} {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition", `form-data; name="image"; filename="`+name+`"`)
			header.Set("Content-Type", "image/png")
			part, err := writer.CreatePart(header)
			require.NoError(t, err)
			_, err = part.Write(data)
			require.NoError(t, err)
		}
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		_, err := store.Accept(req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, services.ErrTooManyFiles))
		assertNoStoredFiles(t, fs)
	})
}

func TestStoreCleanup(t *testing.T) {
	t.Run("cleanup removes the stored file", func(t *testing.T) {
		store, fs := testStore(t)

		desc, err := store.Accept(multipartRequest(t, "image", "photo.png", "image/png", pngBytes(t)))
		require.NoError(t, err)

		store.Cleanup(desc)

		exists, err := afero.Exists(fs, desc.Path)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("cleanup of a nil descriptor is a no-op", func(t *testing.T) {
		store, _ := testStore(t)
		store.Cleanup(nil)
	})

	t.Run("removing a missing file is a no-op", func(t *testing.T) {
		store, _ := testStore(t)
		store.Remove("never-stored.png")
	})

	t.Run("bulk remove deletes every named file", func(t *testing.T) {
		store, fs := testStore(t)

		first, err := store.Accept(multipartRequest(t, "image", "a.png", "image/png", pngBytes(t)))
		require.NoError(t, err)
		second, err := store.Accept(multipartRequest(t, "image", "b.png", "image/png", pngBytes(t)))
		require.NoError(t, err)

		store.BulkRemove([]string{first.StoredName, second.StoredName, "", "missing.png"})

		assertNoStoredFiles(t, fs)
	})
}

func assertNoStoredFiles(t *testing.T, fs afero.Fs) {
	t.Helper()
	entries, err := afero.ReadDir(fs, "uploads")
	if err != nil {
		return
	}
	assert.Empty(t, entries)
}
