package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialsFor(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Dana Khoury", "DK"},
		{"dana", "D"},
		{"وليد خوري", "وخ"},
		{"Élodie Haddad", "ÉH"},
		{"  ", "?"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, initialsFor(tc.name), "name %q", tc.name)
	}
}

func TestNewAvatarService_RejectsNilBucketService(t *testing.T) {
	svc, err := NewAvatarService(nil, testLogger(), nil)
	require.Error(t, err)
	require.Nil(t, svc)
}
