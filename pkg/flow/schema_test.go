package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

func TestSchemaValidateDefaults(t *testing.T) {
	input, err := gatewaySchema(false).Validate(map[string]any{
		FieldHost:     testHost,
		FieldPassword: testPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, Input{
		FieldHost:     testHost,
		FieldPort:     smile.DefaultPort,
		FieldUsername: smile.UsernameSmile,
		FieldPassword: testPassword,
	}, input)
}

func TestSchemaValidateCoercesPort(t *testing.T) {
	for _, port := range []any{8080, int64(8080), float64(8080), "8080", " 8080 "} {
		input, err := gatewaySchema(false).Validate(map[string]any{
			FieldHost:     testHost,
			FieldPort:     port,
			FieldPassword: testPassword,
		})
		require.NoError(t, err, "port %v", port)
		assert.Equal(t, 8080, input[FieldPort])
	}
}

func TestSchemaValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		field string
	}{
		{
			name:  "missing host",
			raw:   map[string]any{FieldPassword: testPassword},
			field: FieldHost,
		},
		{
			name:  "missing password",
			raw:   map[string]any{FieldHost: testHost},
			field: FieldPassword,
		},
		{
			name:  "extra key",
			raw:   map[string]any{FieldHost: testHost, FieldPassword: testPassword, "token": "x"},
			field: "token",
		},
		{
			name:  "port not a number",
			raw:   map[string]any{FieldHost: testHost, FieldPassword: testPassword, FieldPort: "eighty"},
			field: FieldPort,
		},
		{
			name:  "fractional port",
			raw:   map[string]any{FieldHost: testHost, FieldPassword: testPassword, FieldPort: 80.5},
			field: FieldPort,
		},
		{
			name:  "unknown username",
			raw:   map[string]any{FieldHost: testHost, FieldPassword: testPassword, FieldUsername: "admin"},
			field: FieldUsername,
		},
		{
			name:  "host not a string",
			raw:   map[string]any{FieldHost: 1234, FieldPassword: testPassword},
			field: FieldHost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gatewaySchema(false).Validate(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDiscoveredSchemaRejectsConnectionFields(t *testing.T) {
	s := gatewaySchema(true)
	assert.Equal(t, []string{FieldPassword}, s.FieldNames())

	_, err := s.Validate(map[string]any{FieldHost: testHost, FieldPassword: testPassword})
	assert.ErrorIs(t, err, ErrInvalidInput)

	input, err := s.Validate(map[string]any{FieldPassword: testPassword})
	require.NoError(t, err)
	assert.Equal(t, Input{FieldPassword: testPassword}, input)
}

func TestPasswordFieldIsSecret(t *testing.T) {
	f, ok := gatewaySchema(true).Field(FieldPassword)
	require.True(t, ok)
	assert.True(t, f.Secret)
	assert.True(t, f.Required)
}

func TestInputSmileConfig(t *testing.T) {
	cfg := Input{
		FieldHost:     testHost,
		FieldPort:     float64(8080),
		FieldUsername: smile.UsernameStretch,
		FieldPassword: testPassword,
	}.SmileConfig()

	assert.Equal(t, smile.Config{
		Host:     testHost,
		Password: testPassword,
		Port:     8080,
		Username: smile.UsernameStretch,
		Timeout:  ValidateTimeout,
	}, cfg)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		kind ErrorKind
		code string
	}{
		{nil, ErrorKindNone, ""},
		{smile.ErrInvalidAuthentication, ErrorKindAuth, "invalid_auth"},
		{smile.ErrConnectionFailed, ErrorKindConnect, "cannot_connect"},
		{smile.ErrResponse, ErrorKindConnect, "cannot_connect"},
		{smile.ErrProtocol, ErrorKindConnect, "cannot_connect"},
		{errors.New("boom"), ErrorKindUnknown, "unknown"},
	}

	for _, tt := range tests {
		kind := ClassifyError(tt.err)
		assert.Equal(t, tt.kind, kind, "error %v", tt.err)
		assert.Equal(t, tt.code, kind.Code())
	}
	assert.Equal(t, "ErrorKind(9)", ErrorKind(9).String())
}
