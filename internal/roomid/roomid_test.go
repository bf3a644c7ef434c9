package roomid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nroche/timebomb/internal/randutil"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator(randutil.New(1), 4)

	code := g.Generate()
	require.Len(t, code, 4)
	require.NoError(t, Validate(code, 4))
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewGenerator(randutil.New(42), 4)
	b := NewGenerator(randutil.New(42), 4)
	assert.Equal(t, a.Generate(), b.Generate())
}

func TestGenerateCustomLength(t *testing.T) {
	g := NewGenerator(randutil.New(1), 6)
	assert.Len(t, g.Generate(), 6)

	// Non-positive lengths fall back to the default.
	g = NewGenerator(randutil.New(1), 0)
	assert.Len(t, g.Generate(), DefaultLength)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "AB3D", Normalize(" ab3d "))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "valid", code: "AB3D", wantErr: false},
		{name: "too short", code: "AB3", wantErr: true},
		{name: "too long", code: "AB3DE", wantErr: true},
		{name: "lowercase rejected", code: "ab3d", wantErr: true},
		{name: "punctuation rejected", code: "AB-D", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.code, 4)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
