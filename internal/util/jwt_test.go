package util

import (
	"testing"
	"time"

	"skillquest_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	student := &model.Student{ID: 7, Email: "ada@example.com", Role: model.RoleStudent}

	token, err := GenerateJWT(student, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.StudentID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, model.RoleStudent, claims.Role)
}

func TestParseJWT_Rejects(t *testing.T) {
	student := &model.Student{ID: 7}

	token, err := GenerateJWT(student, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)

	expired, err := GenerateJWT(student, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)

	_, err = ParseJWT("not-a-token", "secret")
	assert.Error(t, err)
}
