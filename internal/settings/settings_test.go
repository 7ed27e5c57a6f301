package settings

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	st, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, st.Enabled())
	assert.Equal(t, "Left", st.Alignment())
	assert.False(t, st.SuppressNotifications())
	assert.Empty(t, st.IconMappings())
}

func TestSetAndReadBack(t *testing.T) {
	dir := t.TempDir()
	st, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, st.SetString(KeyAlignment, "Right", ScopeUser))
	require.NoError(t, st.SetBool(KeySuppressAll, true, ScopeGlobal))

	assert.Equal(t, "Right", st.Alignment())
	assert.True(t, st.SuppressNotifications())

	// A fresh Store over the same directory sees the persisted values.
	st2, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Right", st2.Alignment())
	assert.True(t, st2.SuppressNotifications())
}

func TestUserScopeShadowsGlobal(t *testing.T) {
	st, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.SetBool(KeyEnabled, true, ScopeGlobal))
	require.NoError(t, st.SetBool(KeyEnabled, false, ScopeUser))

	assert.False(t, st.Enabled(), "user scope wins")
}

func TestAlignment_InvalidLiteralFallsBackToLeft(t *testing.T) {
	st, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, st.SetString(KeyAlignment, "middle", ScopeUser))

	assert.Equal(t, "Left", st.Alignment())
}

func TestIconMappings_UserShadowsGlobal(t *testing.T) {
	dir := t.TempDir()
	st, err := Load(dir)
	require.NoError(t, err)

	globalYAML := "icons:\n  custom:\n    readme.md: book\n    rs: crab\n"
	userYAML := "icons:\n  custom:\n    readme.md: scroll\n"
	require.NoError(t, os.WriteFile(st.Path(ScopeGlobal), []byte(globalYAML), 0o600))
	require.NoError(t, os.WriteFile(st.Path(ScopeUser), []byte(userYAML), 0o600))

	st, err = Load(dir)
	require.NoError(t, err)

	m := st.IconMappings()
	assert.Equal(t, "scroll", m["readme.md"])
	assert.Equal(t, "crab", m["rs"])
}

func TestScopesPersistToSeparateFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, st.SetBool("notifications.suppress_could_not_connect", true, ScopeGlobal))

	userData, err := os.ReadFile(st.Path(ScopeUser))
	require.NoError(t, err)
	globalData, err := os.ReadFile(st.Path(ScopeGlobal))
	require.NoError(t, err)

	assert.NotContains(t, string(userData), "suppress_could_not_connect")
	assert.Contains(t, string(globalData), "suppress_could_not_connect")
}

func TestManualEditWinsAfterProgrammaticWrite(t *testing.T) {
	st, err := Load(t.TempDir())
	require.NoError(t, err)

	st.Watch()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, st.SetString(KeyAlignment, "Right", ScopeUser))
	require.Equal(t, "Right", st.Alignment())

	// A later hand edit of the same key must not be shadowed by the
	// programmatic write.
	require.NoError(t, os.WriteFile(st.Path(ScopeUser), []byte("alignment: Left\n"), 0o600))

	require.Eventually(t, func() bool {
		return st.Alignment() == "Left"
	}, 5*time.Second, 50*time.Millisecond, "manual file edit must win after the watcher re-read")
}

func TestOnChange_FiresAfterFileEdit(t *testing.T) {
	st, err := Load(t.TempDir())
	require.NoError(t, err)

	changed := make(chan struct{}, 4)
	st.OnChange(func() { changed <- struct{}{} })
	st.Watch()

	// Give the watcher a moment to register before touching the file.
	time.Sleep(100 * time.Millisecond)

	// Simulate a live edit of the user file, as an editor would make.
	require.NoError(t, os.WriteFile(st.Path(ScopeUser), []byte("alignment: Right\n"), 0o600))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("config change never observed")
	}
	assert.Equal(t, "Right", st.Alignment())
}
