package mongodb

import (
	"testing"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOwnedFilterMatchesIdAndAuthor(t *testing.T) {
	f := ownedFilter("p1", "u1")
	if f["_id"] != models.PostID("p1") || f["authorId"] != models.UserID("u1") {
		t.Fatalf("unexpected filter %v", f)
	}
	if len(f) != 2 {
		t.Fatalf("filter must only match id and owner, got %v", f)
	}
}

func TestUpdateDocumentSetsOnlySuppliedFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	image := ""
	doc := updateDocument(models.PostUpdate{Image: &image}, now)

	set, ok := doc["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %v", doc)
	}
	if set["updatedAt"] != now {
		t.Fatalf("expected updatedAt %v, got %v", now, set["updatedAt"])
	}
	if v, ok := set["image"]; !ok || v != "" {
		t.Fatalf("expected image cleared, got %v", set)
	}
	if _, ok := set["title"]; ok {
		t.Fatalf("title must not be set, got %v", set)
	}
	if _, ok := set["content"]; ok {
		t.Fatalf("content must not be set, got %v", set)
	}
}

func TestIdentityFilterMatchesEither(t *testing.T) {
	f := identityFilter("a@x.com", "alice")
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected two $or clauses, got %v", f)
	}
	if or[0].(bson.M)["email"] != "a@x.com" || or[1].(bson.M)["username"] != "alice" {
		t.Fatalf("unexpected clauses %v", or)
	}
}
