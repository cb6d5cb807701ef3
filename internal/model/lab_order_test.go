package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNotesString(t *testing.T) {
	notes := NormalizeNotes("ajustar color A2")
	assert.Equal(t, NotesKindText, notes.Kind)
	assert.Equal(t, "ajustar color A2", notes.Text)
}

func TestNormalizeNotesNil(t *testing.T) {
	notes := NormalizeNotes(nil)
	assert.Equal(t, NotesKindText, notes.Kind)
	assert.Empty(t, notes.Text)
}

func TestNormalizeNotesList(t *testing.T) {
	notes := NormalizeNotes([]interface{}{"color A2", 42, "sin metal"})
	assert.Equal(t, NotesKindItems, notes.Kind)
	assert.Equal(t, []string{"color A2", "42", "sin metal"}, notes.Items)
}

func TestNormalizeNotesObject(t *testing.T) {
	notes := NormalizeNotes(map[string]interface{}{"color": "A2"})
	assert.Equal(t, NotesKindRaw, notes.Kind)
	assert.Equal(t, "A2", notes.Raw["color"])
}

func TestNormalizeNotesScalarFallback(t *testing.T) {
	notes := NormalizeNotes(3.14)
	assert.Equal(t, NotesKindOther, notes.Kind)
	assert.Equal(t, 3.14, notes.Value)
}

func TestOrderNotesUnmarshalFreeForm(t *testing.T) {
	var notes OrderNotes
	require.NoError(t, json.Unmarshal([]byte(`"ajustar oclusion"`), &notes))
	assert.Equal(t, NotesKindText, notes.Kind)
	assert.Equal(t, "ajustar oclusion", notes.Text)

	require.NoError(t, json.Unmarshal([]byte(`["uno","dos"]`), &notes))
	assert.Equal(t, NotesKindItems, notes.Kind)
	assert.Equal(t, []string{"uno", "dos"}, notes.Items)
}

func TestOrderNotesUnmarshalTaggedVariant(t *testing.T) {
	var notes OrderNotes
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"items","items":["uno"]}`), &notes))
	assert.Equal(t, NotesKindItems, notes.Kind)
	assert.Equal(t, []string{"uno"}, notes.Items)
}

func TestOrderNotesUnmarshalObjectWithoutKind(t *testing.T) {
	var notes OrderNotes
	require.NoError(t, json.Unmarshal([]byte(`{"color":"A2","kind":"bogus"}`), &notes))
	assert.Equal(t, NotesKindRaw, notes.Kind)
	assert.Equal(t, "A2", notes.Raw["color"])
}

func TestParseObjectID(t *testing.T) {
	id, ok := ParseObjectID("507f1f77bcf86cd799439011")
	assert.True(t, ok)
	assert.False(t, id.IsZero())

	_, ok = ParseObjectID("not-an-id")
	assert.False(t, ok)

	_, ok = ParseObjectID("")
	assert.False(t, ok)
}
