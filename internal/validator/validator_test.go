package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySuccess(t *testing.T) {
	c := Classify("Directory created successfully\nexit code: 0", ClassDirectoryCreation, nil)
	assert.Equal(t, Success, c.Result)
}

func TestClassifyErrorPrecedesExpected(t *testing.T) {
	c := Classify("mkdir: cannot create directory 'x': Permission denied\nexit code: 1", ClassDirectoryCreation, nil)
	assert.Equal(t, Error, c.Result)
	assert.NotEmpty(t, c.ContextSnippet)
}

func TestClassifyWarningBeforeExpected(t *testing.T) {
	c := Classify("Warning: directory exists, skipping create", ClassDirectoryCreation, nil)
	assert.Equal(t, Warning, c.Result)
}

func TestClassifyUnknown(t *testing.T) {
	c := Classify("42", ClassFileReading, nil)
	assert.Equal(t, Unknown, c.Result)
}

func TestClassifyContextHookPromotesToError(t *testing.T) {
	c := Classify("file written successfully\nexit code: 0", ClassFileCreation, &Hooks{ExpectedName: "report.txt"})
	assert.Equal(t, Error, c.Result)
}

func TestClassifyForbiddenContentPromotesToError(t *testing.T) {
	c := Classify("created secrets.env successfully\nexit code: 0", ClassFileCreation, &Hooks{ForbiddenContent: "secrets.env"})
	assert.Equal(t, Error, c.Result)
}

func TestClassifyExitCodeAlwaysChecked(t *testing.T) {
	c := Classify("command ran\nexit code: 2", ClassCommandExecution, nil)
	assert.Equal(t, Error, c.Result)
}

func TestClassifyUnknownClass(t *testing.T) {
	c := Classify("anything", CommandClass("nonexistent"), nil)
	assert.Equal(t, Unknown, c.Result)
}
