package yaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/yaml"
)

func TestNewValidator(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		errMsg     string
		schemaData []byte
		wantErr    bool
	}{
		"valid schema": {
			schemaData: []byte(`{
				"type": "object",
				"properties": {
					"name": {"type": "string"}
				},
				"required": ["name"]
			}`),
			wantErr: false,
		},
		"invalid json": {
			schemaData: []byte(`{"invalid": json}`),
			wantErr:    true,
			errMsg:     "unmarshal schema",
		},
		"invalid schema": {
			schemaData: []byte(`{"type": "invalid_type"}`),
			wantErr:    true,
			errMsg:     "compile schema",
		},
		"empty schema": {
			schemaData: []byte(`{}`),
			wantErr:    false,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			validator, err := yaml.NewValidator("test", tc.schemaData)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				assert.Nil(t, validator)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, validator)
			}
		})
	}
}

func TestMustNewValidator(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		yaml.MustNewValidator("test", []byte(`{}`))
	})
	assert.Panics(t, func() {
		yaml.MustNewValidator("test", []byte(`{"invalid": json}`))
	})
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	schemaData := []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"count": {"type": "number"}
		},
		"required": ["name"],
		"additionalProperties": false
	}`)

	validator, err := yaml.NewValidator("test", schemaData)
	require.NoError(t, err)

	tcs := map[string]struct {
		data    any
		wantErr bool
	}{
		"valid data": {
			data:    map[string]any{"name": "UK", "count": 3},
			wantErr: false,
		},
		"missing required field": {
			data:    map[string]any{"count": 3},
			wantErr: true,
		},
		"wrong type": {
			data:    map[string]any{"name": 123},
			wantErr: true,
		},
		"unknown property": {
			data:    map[string]any{"name": "UK", "extra": true},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := validator.Validate(tc.data)

			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "schema validation")
			} else {
				require.NoError(t, err)
			}
		})
	}
}
