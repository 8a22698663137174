package remote

import (
	"errors"
	"testing"

	"github.com/relayforge/relayforge/internal/toolkit"
	"github.com/stretchr/testify/assert"
)

func TestValidateFilenameRejectsTraversal(t *testing.T) {
	_, err := validateFilename("../etc/passwd")
	assert.True(t, errors.Is(err, toolkit.ErrPathTraversal))
}

func TestValidateFilenameRejectsAbsolutePath(t *testing.T) {
	_, err := validateFilename("/etc/passwd")
	assert.True(t, errors.Is(err, toolkit.ErrPathTraversal))
}

func TestValidateFilenameRejectsForbiddenExtension(t *testing.T) {
	_, err := validateFilename("payload.exe")
	assert.True(t, errors.Is(err, toolkit.ErrForbiddenExtension))
}

func TestValidateFilenameAcceptsWhitelisted(t *testing.T) {
	name, err := validateFilename("scripts/deploy.sh")
	assert.NoError(t, err)
	assert.Equal(t, "scripts/deploy.sh", name)
}

func TestValidateFilenameAcceptsNoExtension(t *testing.T) {
	_, err := validateFilename("Makefile")
	assert.NoError(t, err)
}

func TestRejectTraversalAllowsPlainPaths(t *testing.T) {
	assert.NoError(t, rejectTraversal("subdir/file.txt"))
	assert.NoError(t, rejectTraversal("."))
}
