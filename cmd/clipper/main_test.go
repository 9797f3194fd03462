package main

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/clipper"
)

func TestLookupPreset(t *testing.T) {
	p, err := lookupPreset("heart")
	require.NoError(t, err)
	assert.Equal(t, clipper.Heart, *p.Shape)

	_, err = lookupPreset("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown preset "bogus"`)
	assert.Contains(t, err.Error(), "circle")
}

func TestDiagnosticsReachTheConsole(t *testing.T) {
	var stderr bytes.Buffer

	c, err := clipper.New(clipper.NewStyleTarget("x"), clipper.Patch{}, clipper.WithDiagnostics(newDiagnostics(&stderr)))
	require.NoError(t, err)
	c.Preset("bogus")

	assert.Contains(t, stderr.String(), `Warning: preset "bogus" not found`)
}

func TestDiagnosticsOfTheProcessor(t *testing.T) {
	var stderr bytes.Buffer

	p := &clipper.Processor{Preset: "bogus", Diagnostics: newDiagnostics(&stderr)}
	_, _, err := p.NewClipper("img", image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)

	assert.Contains(t, stderr.String(), `preset "bogus" not found`)
}
