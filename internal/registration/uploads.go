package registration

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hadhin/internal/model"
)

var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true,
}

// AllowedFile reports whether the filename carries an accepted extension.
func AllowedFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SaveUpload writes one attachment to dir under a collision-free name and
// returns its record. The saved name embeds the registration number and a
// timestamp, mirroring how registrations are later traced to their files.
func SaveUpload(dir, regNumber, fieldName, originalName string, src io.Reader) (model.RegistrationFile, error) {
	if !AllowedFile(originalName) {
		return model.RegistrationFile{}, fmt.Errorf("%w: file type not allowed", model.ErrValidation)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.RegistrationFile{}, fmt.Errorf("create upload dir: %w", err)
	}
	base := filepath.Base(originalName)
	saved := fmt.Sprintf("%s_%s_%s", regNumber, time.Now().Format("20060102_150405"), base)
	path := filepath.Join(dir, saved)

	dst, err := os.Create(path)
	if err != nil {
		return model.RegistrationFile{}, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return model.RegistrationFile{}, fmt.Errorf("write upload file: %w", err)
	}
	return model.RegistrationFile{
		OriginalName: originalName,
		SavedName:    saved,
		FilePath:     path,
		FileType:     fieldName,
	}, nil
}
