package utilities

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/adityajoshi12/testpki/glossary"
	"github.com/pkg/errors"
)

// Permissions used for written files
const (
	PublicFileMode  os.FileMode = 0644
	PrivateFileMode os.FileMode = 0600
)

// ResolveOutputPath maps paths under the default output folder to the user's
// home directory and leaves every other path untouched.
func ResolveOutputPath(filePath string) (string, error) {
	clean := filepath.Clean(filePath)
	if clean != glossary.DefaultOutputPath && !strings.HasPrefix(clean, glossary.DefaultOutputPath+string(filepath.Separator)) {
		return clean, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", errors.WithMessage(err, "ResolveOutputPath - Unable to get current user")
	}
	return filepath.Join(usr.HomeDir, clean), nil
}

// WriteFileToLocal writes data to filePath, creating missing parent folders
func WriteFileToLocal(filePath string, data []byte, perm os.FileMode) error {
	path, err := ResolveOutputPath(filePath)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WithMessage(err, "WriteFileToLocal - Unable to make output folder")
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errors.WithMessage(err, "Unable to create file")
	}
	defer file.Close()

	_, err = file.Write(data)
	if err != nil {
		return errors.WithMessage(err, "Unable to write data to file")
	}

	return nil
}

// WriteJsonFileToLocal to write json cert struct into local storage
func WriteJsonFileToLocal(filePath string, jCert interface{}) error {
	jsByte, err := json.MarshalIndent(jCert, "", "  ")
	if err != nil {
		return errors.WithMessage(err, "WriteJsonFileToLocal - Unable to marshal json of data")
	}

	return WriteFileToLocal(filePath, jsByte, PublicFileMode)
}
