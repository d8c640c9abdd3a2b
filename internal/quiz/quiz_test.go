package quiz

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBank_BuiltinQuestions(t *testing.T) {
	b, err := NewBank("")
	require.NoError(t, err)
	assert.Equal(t, 40, b.Len())

	for _, q := range b.questions {
		assert.NotEmpty(t, q.ID)
		assert.Contains(t, q.Options, q.Correct, "answer must be one of the options for %q", q.Question)
	}
}

func TestNewBank_MissingDirIsFine(t *testing.T) {
	b, err := NewBank(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 40, b.Len())
}

func TestNewBank_LoadsDirAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	extra := `{"questions": [
  {"question": "What is the main ingredient in hummus?", "options": ["Chickpeas", "Peas"], "correct": "Chickpeas"},
  {"question": "Which nut is used in pesto genovese?", "options": [" Pine nuts", "Walnuts"], "correct": "Pine nuts "}
]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.json"), []byte(extra), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"questions": [`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	b, err := NewBank(dir)
	require.NoError(t, err)
	assert.Equal(t, 41, b.Len(), "duplicate question text should collapse, broken files are skipped")

	var pesto Question
	for _, q := range b.questions {
		if q.Question == "Which nut is used in pesto genovese?" {
			pesto = q
		}
	}
	require.NotEmpty(t, pesto.ID)
	assert.Equal(t, []string{"Pine nuts", "Walnuts"}, pesto.Options)
	assert.Equal(t, "Pine nuts", pesto.Correct)
}

func TestBank_IDsAreStable(t *testing.T) {
	a, err := NewBank("")
	require.NoError(t, err)
	b, err := NewBank("")
	require.NoError(t, err)

	for i := range a.questions {
		assert.Equal(t, a.questions[i].ID, b.questions[i].ID)
	}
}

func TestBank_NextAvoidsPrevious(t *testing.T) {
	b, err := NewBank("")
	require.NoError(t, err)

	prev := b.Next("")
	for i := 0; i < 200; i++ {
		q := b.Next(prev.ID)
		require.NotEqual(t, prev.ID, q.ID)
		prev = q
	}
}

func TestBank_NextSingleQuestion(t *testing.T) {
	q := Question{ID: "only", Question: "Q?", Options: []string{"A"}, Correct: "A"}
	b := &Bank{questions: []Question{q}, byID: map[string]int{"only": 0}}

	assert.Equal(t, "only", b.Next("only").ID)
	assert.Equal(t, Question{}, (&Bank{}).Next(""))
}

func TestBank_Check(t *testing.T) {
	b, err := NewBank("")
	require.NoError(t, err)

	var deglaze Question
	for _, q := range b.questions {
		if q.Question == "What is the purpose of deglazing a pan?" {
			deglaze = q
		}
	}
	require.NotEmpty(t, deglaze.ID)

	ok, expected, err := b.Check(deglaze.ID, "To dissolve browned bits for added flavor")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "To dissolve browned bits for added flavor", expected)

	ok, _, err = b.Check(deglaze.ID, "To cool down the pan")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = b.Check("missing", "x")
	assert.True(t, errors.Is(err, ErrUnknownQuestion))
}

func TestQuestion_PublicHidesAnswer(t *testing.T) {
	q := Question{ID: "1", Question: "Q?", Options: []string{"A", "B"}, Correct: "A"}
	pub := q.Public()
	assert.Empty(t, pub.Correct)
	assert.Equal(t, q.Options, pub.Options)
	assert.Equal(t, "A", q.Correct)
}
