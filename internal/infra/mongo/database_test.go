package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"exam-prep-service/internal/domain"
)

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := idString(oid); got != oid.Hex() {
		t.Fatalf("expected hex id, got %q", got)
	}
	if got := idString("user-1"); got != "user-1" {
		t.Fatalf("expected string id, got %q", got)
	}
	if got := idString(nil); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

func TestQuestionDocDecodesObjectIDs(t *testing.T) {
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":           oid,
		"questionText":  "Capital of Tamil Nadu?",
		"options":       bson.A{"Chennai", "Madurai"},
		"correctAnswer": "Chennai",
		"subject":       "Geography",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc questionDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if idString(doc.ID) != oid.Hex() {
		t.Fatalf("expected id %s, got %v", oid.Hex(), doc.ID)
	}
	want := domain.Question{Question: "Capital of Tamil Nadu?", CorrectAnswer: "Chennai", Subject: "Geography"}
	if doc.Question.Question != want.Question || doc.CorrectAnswer != want.CorrectAnswer || len(doc.Options) != 2 {
		t.Fatalf("unexpected question %+v", doc.Question)
	}
}
