package cookiejar

import (
	"os"
	"path/filepath"
	"testing"

	"browser-use-gologin/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileJar_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	jar := New()

	cookies := []entity.Cookie{
		{Name: "sid", Value: "abc", Domain: ".example.com", Path: "/", Expires: 1893456000, HTTPOnly: true, Secure: true, SameSite: "Lax"},
		{Name: "pref", Value: "1", Domain: "example.com", Path: "/", Expires: -1},
	}
	require.NoError(t, jar.Write(path, cookies))

	got, err := jar.Read(path)
	require.NoError(t, err)
	assert.Equal(t, cookies, got)
	assert.True(t, got[1].IsSession())
}

func TestFileJar_WriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	jar := New()

	require.NoError(t, jar.Write(path, []entity.Cookie{{Name: "a"}, {Name: "b"}}))
	require.NoError(t, jar.Write(path, []entity.Cookie{{Name: "c"}}))

	got, err := jar.Read(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Name)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileJar_WriteNilIsEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	require.NoError(t, New().Write(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestFileJar_ReadMissingFile(t *testing.T) {
	_, err := New().Read(filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileJar_ReadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New().Read(path)
	assert.Error(t, err)
}

func TestFileJar_ReadAcceptsBrowserExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	raw := `[{"name":"sid","value":"v","domain":".example.com","path":"/","expires":1700000000.5,"httpOnly":true,"secure":false,"sameSite":"None"}]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	got, err := New().Read(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "None", got[0].SameSite)
	assert.InDelta(t, 1700000000.5, got[0].Expires, 1e-6)
}
