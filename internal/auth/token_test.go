package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dinehub/internal/model"
)

func TestIssueAndParseStaffToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(42, PrincipalStaff, model.RoleRestaurantStaff)
	require.NoError(t, err)

	p, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), p.SubjectID)
	require.Equal(t, PrincipalStaff, p.Type)
	require.Equal(t, model.RoleRestaurantStaff, p.Role)
}

func TestParseCustomerToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(7, PrincipalCustomer, "")
	require.NoError(t, err)

	p, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, PrincipalCustomer, p.Type)
	require.Empty(t, p.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue(1, PrincipalStaff, model.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute)
	token, err := issuer.Issue(1, PrincipalStaff, model.RoleAdmin)
	require.NoError(t, err)

	_, err = issuer.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)
	require.True(t, CheckPassword(hash, "s3cret-pass"))
	require.False(t, CheckPassword(hash, "wrong"))
}
