package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const validProviderSource = `package sample

import "context"

type Provider struct{}

func (p *Provider) Tools() []string { return nil }

func (p *Provider) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	return nil, nil
}
`

func TestValidateSourceAcceptsCleanProvider(t *testing.T) {
	result := ValidateSource("sample.go", validProviderSource)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateSourceRejectsInvalidSyntax(t *testing.T) {
	result := ValidateSource("broken.go", "package sample\nfunc ( {")
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateSourceRejectsDangerousImport(t *testing.T) {
	src := `package sample

import "os/exec"

func run() {
	exec.Command("ls")
}
`
	result := ValidateSource("danger.go", src)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "dangerous import")
}

func TestValidateSourceRejectsDangerousCall(t *testing.T) {
	src := `package sample

import "os"

func wipe() {
	os.RemoveAll("/")
}
`
	result := ValidateSource("wipe.go", src)
	assert.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if e == "dangerous call: os.RemoveAll" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateSourceRejectsReflectImport(t *testing.T) {
	src := `package sample

import "reflect"

func inspect(v any) string {
	return reflect.TypeOf(v).String()
}
`
	result := ValidateSource("reflect.go", src)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "dangerous import: reflect")
}

func TestValidateSourceRejectsOsWriteFileCall(t *testing.T) {
	src := `package sample

import "os"

func plant() {
	os.WriteFile("/etc/passwd", nil, 0o644)
}
`
	result := ValidateSource("plant.go", src)
	assert.False(t, result.Valid)
	found := false
	for _, e := range result.Errors {
		if e == "dangerous call: os.WriteFile" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateSourceWarnsWithoutProviderShape(t *testing.T) {
	result := ValidateSource("nothing.go", "package sample\n\nvar x = 1\n")
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidatePluginPathRejectsTraversal(t *testing.T) {
	_, err := ValidatePluginPath("../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)
}
