package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHTTPMethod(t *testing.T) {
	tests := []struct {
		in   string
		want HTTPMethod
		ok   bool
	}{
		{"GET", MethodGet, true},
		{"post", MethodPost, true},
		{"RequestMethod.PUT", MethodPut, true},
		{" delete ", MethodDelete, true},
		{"Patch", MethodPatch, true},
		{"HEAD", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseHTTPMethod(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestStrongerIsOrderIndependent(t *testing.T) {
	all := []AuthMechanism{MechanismNone, MechanismOther, MechanismSession, MechanismBasic, MechanismBearerJWT}
	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, Stronger(a, b), Stronger(b, a), "%s vs %s", a, b)
		}
	}
	assert.Equal(t, MechanismBearerJWT, Stronger(MechanismBasic, MechanismBearerJWT))
	assert.Equal(t, MechanismBasic, Stronger(MechanismSession, MechanismBasic))
	assert.Equal(t, MechanismSession, Stronger(MechanismOther, MechanismSession))
	assert.Equal(t, MechanismNone, Stronger("", MechanismNone))
}

func TestSchemaSetKeepsFirstAndOrder(t *testing.T) {
	s := NewSchemaSet()
	require.True(t, s.Add("User", Object()))
	require.True(t, s.Add("Address", Object()))
	assert.False(t, s.Add("User", EnumOf("A")))

	assert.Equal(t, []string{"User", "Address"}, s.Names())
	u, ok := s.Get("User")
	require.True(t, ok)
	assert.Equal(t, KindObject, u.Kind)
}

func TestParseDetailLevel(t *testing.T) {
	lvl, err := ParseDetailLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelMedium, lvl)

	lvl, err = ParseDetailLevel("LONG")
	require.NoError(t, err)
	assert.Equal(t, LevelLong, lvl)

	_, err = ParseDetailLevel("verbose")
	assert.Error(t, err)
}
