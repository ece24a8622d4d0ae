package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"colegio_backend/internals/features/academics/questions/model"
)

func question(typ string, answer *string, opts ...model.Option) model.Question {
	return model.Question{
		QuestionType:    typ,
		QuestionAnswer:  answer,
		QuestionOptions: datatypes.NewJSONType(opts),
	}
}

func str(s string) *string { return &s }

func TestCheckMultipleChoice(t *testing.T) {
	a := model.Option{Key: "a", Text: "uno"}
	b := model.Option{Key: "b", Text: "dos"}

	assert.Nil(t, Check(question(model.TypeMultipleChoice, str("B"), a, b)))
	assert.Contains(t, Check(question(model.TypeMultipleChoice, nil, a)), "options")
	assert.Contains(t, Check(question(model.TypeMultipleChoice, nil, a, a)), "options")
	assert.Contains(t, Check(question(model.TypeMultipleChoice, str("c"), a, b)), "answer")
}

func TestCheckTrueFalseAndOpen(t *testing.T) {
	assert.Nil(t, Check(question(model.TypeTrueFalse, str("v"))))
	assert.Contains(t, Check(question(model.TypeTrueFalse, str("si"))), "answer")
	assert.Contains(t, Check(question(model.TypeTrueFalse, nil, model.Option{Key: "a", Text: "x"})), "options")

	assert.Nil(t, Check(question(model.TypeOpen, nil)))
	assert.Contains(t, Check(question(model.TypeOpen, nil, model.Option{Key: "a", Text: "x"})), "options")
}

func TestCheckUnknownType(t *testing.T) {
	fe := Check(question("ensayo", nil))
	assert.Contains(t, fe, "type")
}

func TestToModelDefaults(t *testing.T) {
	req := CreateQuestionRequest{Statement: "¿2+2?", Type: " Desarrollo "}
	q := req.ToModel(uuid.New(), uuid.New())
	assert.Equal(t, model.TypeOpen, q.QuestionType)
	assert.Equal(t, 1.0, q.QuestionPoints)
	assert.Nil(t, q.QuestionCourseID)
}
