// Package upload stores business images on local disk. Files are saved
// under a configured directory with a generated name and served statically
// under /uploads/imagenesnegocios.
package upload

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PublicPath is the URL prefix the upload directory is served under.
const PublicPath = "/uploads/imagenesnegocios"

// SaveImage stores the uploaded file from the given multipart form key and
// returns the stored filename. Returns an empty filename (and no error)
// when the request carries no file for that key.
func SaveImage(c echo.Context, formKey, dir string) (string, error) {
	fileHeader, err := c.FormFile(formKey)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return "", nil
		}
		return "", fmt.Errorf("error retrieving file %q: %w", formKey, err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("error opening uploaded file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("error creating upload directory: %w", err)
	}

	// Keep the original extension, replace the name. The extension comes
	// from the client so strip any path tricks first.
	ext := filepath.Ext(filepath.Base(fileHeader.Filename))
	ext = strings.ReplaceAll(ext, "..", "")
	filename := uuid.New().String() + ext

	dstPath := filepath.Join(dir, filename)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("error creating destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("error copying uploaded file: %w", err)
	}

	return filename, nil
}

// Remove deletes a stored image. Missing files are not an error.
func Remove(dir, filename string) error {
	if filename == "" {
		return nil
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing file %q: %w", path, err)
	}
	return nil
}

// PublicURL builds the absolute URL a stored image is retrievable at,
// using the scheme and host of the current request.
func PublicURL(c echo.Context, filename string) string {
	return fmt.Sprintf("%s://%s%s/%s", c.Scheme(), c.Request().Host, PublicPath, filename)
}

// FilenameFromURL extracts the stored filename from a previously recorded
// public URL.
func FilenameFromURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	return filepath.Base(imageURL)
}
