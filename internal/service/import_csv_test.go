package service

import (
	"strings"
	"testing"
)

const csvHeaderLine = "question_type,question_text,difficulty,points,options,correct_answers,explanation,tags\n"

func TestParseCSVRows(t *testing.T) {
	data := csvHeaderLine +
		"multiple_choice,What is 2+2?,easy,1.5,3|4|5,4,Basic arithmetic,math|arithmetic\n" +
		"true_false,The sky is green.,easy,1,,False,,\n" +
		"essay,Explain photosynthesis.,hard,5,,Light becomes sugar,,bio\n"

	rows, err := ParseCSVRows(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	mc := rows[0]
	if mc.Points != 1.5 || len(mc.Options) != 3 {
		t.Errorf("choice row: %+v", mc)
	}
	if !mc.Options[1].IsCorrect || mc.Options[0].IsCorrect {
		t.Errorf("correct flag placement: %+v", mc.Options)
	}
	if len(mc.Tags) != 2 || mc.Explanation == nil {
		t.Errorf("tags/explanation: %+v", mc)
	}

	tf := rows[1]
	if tf.CorrectAnswer == nil || *tf.CorrectAnswer != "False" {
		t.Errorf("true/false row: %+v", tf)
	}
	if len(tf.Options) != 0 {
		t.Errorf("true/false should not build options from the csv: %+v", tf.Options)
	}

	// essay is a legacy alias; the csv layer stores its answers as the
	// sample answer.
	essay := rows[2]
	if essay.SampleAnswer == nil || *essay.SampleAnswer != "Light becomes sugar" {
		t.Errorf("essay row: %+v", essay)
	}
}

func TestParseCSVBadHeader(t *testing.T) {
	if _, err := ParseCSVRows(strings.NewReader("a,b,c\n1,2,3\n")); err == nil {
		t.Error("short header accepted")
	}
	if _, err := ParseCSVRows(strings.NewReader("")); err == nil {
		t.Error("empty file accepted")
	}

	// Case and padding in the header are tolerated.
	upper := strings.ToUpper(csvHeaderLine) + "short_answer,Q,easy,1,,A,,\n"
	if _, err := ParseCSVRows(strings.NewReader(upper)); err != nil {
		t.Errorf("uppercase header rejected: %v", err)
	}
}

func TestParseCSVBadPointsCellIsRowLevel(t *testing.T) {
	data := csvHeaderLine + "short_answer,Q?,easy,lots,,A,,\n"
	rows, err := ParseCSVRows(strings.NewReader(data))
	if err != nil {
		t.Fatalf("a bad cell must not fail the file: %v", err)
	}
	if rows[0].Points != 0 {
		t.Errorf("unparseable points should stay zero: %+v", rows[0])
	}
}
