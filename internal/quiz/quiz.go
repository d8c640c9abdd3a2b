// Package quiz holds the cooking quiz question bank.
package quiz

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/tahcohcat/platepals-web/internal/logger"
)

//go:embed questions.json
var builtin []byte

var ErrUnknownQuestion = errors.New("unknown quiz question")

// questionNamespace keeps question IDs stable across restarts.
var questionNamespace = uuid.MustParse("6f1c3b0e-5a2d-4c8e-9b7a-2d4e8f0a1c3b")

type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct,omitempty"`
}

// Public returns the question without its answer.
func (q Question) Public() Question {
	q.Correct = ""
	q.Options = append([]string(nil), q.Options...)
	return q
}

type questionFile struct {
	Questions []Question `json:"questions"`
}

type Bank struct {
	questions []Question
	byID      map[string]int
	logger    *logger.Log
}

// NewBank loads the built-in questions and every *.json file in dir. A
// missing dir is fine, unreadable files are skipped with a warning.
// Questions are de-duplicated by their text.
func NewBank(dir string) (*Bank, error) {
	b := &Bank{logger: logger.New()}

	var builtinFile questionFile
	if err := json.Unmarshal(builtin, &builtinFile); err != nil {
		return nil, fmt.Errorf("failed to parse built-in questions: %w", err)
	}

	unique := make(map[string]Question)
	collect := func(qs []Question, source string) {
		for _, q := range qs {
			q.Question = strings.TrimSpace(q.Question)
			q.Correct = strings.TrimSpace(q.Correct)
			for i, o := range q.Options {
				q.Options[i] = strings.TrimSpace(o)
			}
			if q.Question == "" || q.Correct == "" || len(q.Options) == 0 {
				b.logger.Warn(fmt.Sprintf("skipping incomplete question in %s", source))
				continue
			}
			unique[strings.ToLower(q.Question)] = q
		}
	}
	collect(builtinFile.Questions, "built-in bank")

	if dir != "" {
		files, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read quiz directory %s: %w", dir, err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			path := filepath.Join(dir, file.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				b.logger.WithError(err).Warn(fmt.Sprintf("could not read quiz file %s", path))
				continue
			}
			var qf questionFile
			if err := json.Unmarshal(data, &qf); err != nil {
				b.logger.WithError(err).Warn(fmt.Sprintf("could not unmarshal quiz file %s", path))
				continue
			}
			collect(qf.Questions, path)
		}
	}

	b.questions = make([]Question, 0, len(unique))
	for _, q := range unique {
		q.ID = uuid.NewSHA1(questionNamespace, []byte(q.Question)).String()
		b.questions = append(b.questions, q)
	}
	sort.Slice(b.questions, func(i, j int) bool {
		return b.questions[i].Question < b.questions[j].Question
	})

	b.byID = make(map[string]int, len(b.questions))
	for i, q := range b.questions {
		b.byID[q.ID] = i
	}

	b.logger.Debug(fmt.Sprintf("Loaded %d quiz questions", len(b.questions)))
	return b, nil
}

func (b *Bank) Len() int {
	return len(b.questions)
}

func (b *Bank) Get(id string) (Question, error) {
	i, ok := b.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	return b.questions[i], nil
}

// Next picks a question uniformly at random, never repeating previousID
// while another question is available.
func (b *Bank) Next(previousID string) Question {
	if len(b.questions) == 0 {
		return Question{}
	}
	prev, hasPrev := b.byID[previousID]
	if !hasPrev || len(b.questions) == 1 {
		return b.questions[rand.IntN(len(b.questions))]
	}
	i := rand.IntN(len(b.questions) - 1)
	if i >= prev {
		i++
	}
	return b.questions[i]
}

// Check reports whether answer is correct for question id and returns the
// expected answer. Surrounding whitespace is ignored on both sides.
func (b *Bank) Check(id, answer string) (bool, string, error) {
	q, err := b.Get(id)
	if err != nil {
		return false, "", err
	}
	return strings.TrimSpace(answer) == q.Correct, q.Correct, nil
}
